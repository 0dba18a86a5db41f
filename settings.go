package emotion

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Detector and model backends
const (
	BackendOpenCV      = "opencv"
	BackendPigo        = "pigo"
	BackendONNXRuntime = "onnxruntime"
)

// Frame sources
const (
	SourceWebcam = "webcam"
	SourceVideo  = "video"
	SourceCamera = "camera"
)

// AppSettings Settings for application
type AppSettings struct {
	Source                     string                      `json:"source"`
	DetectorSettings           DetectorSettings            `json:"detector_settings"`
	ModelSettings              ModelSettings               `json:"model_settings"`
	DecisionSettings           DecisionSettings            `json:"decision_settings"`
	LoopSettings               LoopSettings                `json:"loop_settings"`
	CameraSettings             *CameraSettings             `json:"camera_settings"`
	VideoCaptureDeviceSettings *VideoCaptureDeviceSettings `json:"video_capture_device"`
	VideoSettings              *VideoSettings              `json:"video_settings"`
	MjpegSettings              MjpegSettings               `json:"mjpeg_settings"`
	HTTPSettings               HTTPSettings                `json:"http_settings"`
	LogSettings                LogSettings                 `json:"log_settings"`
	// LabelColors overlay colour per label, "#RRGGBB"
	LabelColors map[string]string `json:"label_colors"`
}

// NewSettings Create new AppSettings from content of configuration file
func NewSettings(fileName string) (*AppSettings, error) {
	bytesValues, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read settings file")
	}
	return ParseSettings(bytesValues)
}

// ParseSettings decodes JSON settings, applies defaults and validates them.
func ParseSettings(data []byte) (*AppSettings, error) {
	settings := AppSettings{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, errors.Wrap(err, "Can't parse settings")
	}
	settings.applyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *AppSettings) applyDefaults() {
	if s.Source == "" {
		s.Source = SourceWebcam
	}
	d := &s.DetectorSettings
	if d.Backend == "" {
		d.Backend = BackendOpenCV
	}
	if d.ScaleFactor == 0 {
		d.ScaleFactor = 1.1
	}
	if d.MinNeighbors == 0 {
		d.MinNeighbors = 3
	}
	if d.PigoMinSize == 0 {
		d.PigoMinSize = 20
	}
	if d.PigoShiftFactor == 0 {
		d.PigoShiftFactor = 0.1
	}
	if d.PigoIoUThreshold == 0 {
		d.PigoIoUThreshold = 0.2
	}
	if d.PigoMinQuality == 0 {
		d.PigoMinQuality = 5.0
	}
	m := &s.ModelSettings
	if m.Backend == "" {
		m.Backend = BackendOpenCV
	}
	if m.Target == "" {
		m.Target = "cpu"
	}
	if m.DNNBackend == "" {
		m.DNNBackend = "default"
	}
	if s.LoopSettings.RefreshHz == 0 {
		s.LoopSettings.RefreshHz = 60
	}
	if s.MjpegSettings.Quality == 0 {
		s.MjpegSettings.Quality = 80
	}
	if s.HTTPSettings.Port == 0 {
		s.HTTPSettings.Port = 8080
	}
	if s.LogSettings.Level == "" {
		s.LogSettings.Level = "info"
	}
	if s.LogSettings.Format == "" {
		s.LogSettings.Format = "text"
	}
}

// Validate reports the first invalid setting.
func (s *AppSettings) Validate() error {
	switch s.Source {
	case SourceWebcam:
		if s.VideoCaptureDeviceSettings == nil {
			s.VideoCaptureDeviceSettings = &VideoCaptureDeviceSettings{}
		}
	case SourceVideo:
		if s.VideoSettings == nil || s.VideoSettings.Source == "" {
			return configErrorf("field 'video_settings.source' has not been provided in configuration file")
		}
	case SourceCamera:
		if s.CameraSettings == nil || s.CameraSettings.Port == 0 {
			return configErrorf("field 'camera_settings.port' has not been provided in configuration file")
		}
	default:
		return configErrorf("unknown source %q", s.Source)
	}

	switch s.DetectorSettings.Backend {
	case BackendOpenCV, BackendPigo:
	default:
		return configErrorf("unknown detector backend %q", s.DetectorSettings.Backend)
	}
	if s.DetectorSettings.CascadeFile == "" {
		return configErrorf("field 'detector_settings.cascade_file' is empty")
	}
	if s.DetectorSettings.ScaleFactor <= 1 {
		return configErrorf("detector scale factor must be greater than 1, got %v", s.DetectorSettings.ScaleFactor)
	}

	switch s.ModelSettings.Backend {
	case BackendOpenCV, BackendONNXRuntime:
	default:
		return configErrorf("unknown model backend %q", s.ModelSettings.Backend)
	}
	if s.ModelSettings.ModelFile == "" {
		return configErrorf("field 'model_settings.model_file' is empty")
	}
	if s.ModelSettings.LabelsFile == "" {
		return configErrorf("field 'model_settings.labels_file' is empty")
	}
	if c := s.DecisionSettings.MinConfidence; c < 0 || c > 1 {
		return configErrorf("min_confidence must be within [0, 1], got %v", c)
	}
	if s.LoopSettings.RefreshHz < 0 {
		return configErrorf("refresh_hz must be positive, got %v", s.LoopSettings.RefreshHz)
	}
	return nil
}

// DetectorSettings face detector
type DetectorSettings struct {
	Backend      string  `json:"backend"`
	CascadeFile  string  `json:"cascade_file"`
	ScaleFactor  float64 `json:"scale_factor"`
	MinNeighbors int     `json:"min_neighbors"`
	// pigo only
	PigoMinSize      int     `json:"pigo_min_size"`
	PigoMaxSize      int     `json:"pigo_max_size"`
	PigoShiftFactor  float64 `json:"pigo_shift_factor"`
	PigoIoUThreshold float64 `json:"pigo_iou_threshold"`
	PigoMinQuality   float32 `json:"pigo_min_quality"`
}

// ModelSettings Neural network
type ModelSettings struct {
	Backend    string `json:"backend"`
	ModelFile  string `json:"model_file"`
	LabelsFile string `json:"labels_file"`
	// OpenCV dnn only
	DNNBackend string `json:"dnn_backend"`
	Target     string `json:"target"`
	// onnxruntime only
	SharedLibrary string `json:"shared_library"`
}

// DecisionSettings decision thresholds
type DecisionSettings struct {
	MinConfidence float64 `json:"min_confidence"`
}

// LoopSettings frame loop scheduling
type LoopSettings struct {
	RefreshHz float64 `json:"refresh_hz"`
}

// MjpegSettings settings for output
type MjpegSettings struct {
	Enable  bool `json:"enable"`
	Quality int  `json:"quality"`
}

// HTTPSettings control and status API
type HTTPSettings struct {
	Port      int  `json:"port"`
	AutoStart bool `json:"auto_start"`
}

// LogSettings logging
type LogSettings struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// CameraSettings settings for camera settings
type CameraSettings struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// VideoCaptureDeviceSettings settings for device settings
type VideoCaptureDeviceSettings struct {
	DeviceID int `json:"device_id"`
}

// VideoSettings settings for video file source
type VideoSettings struct {
	Source string `json:"source"`
	Loop   bool   `json:"loop"`
}

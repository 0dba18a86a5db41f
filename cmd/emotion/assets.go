package main

import (
	"github.com/genert/emotion"
	"github.com/genert/emotion/cv"
	"github.com/genert/emotion/facefinder"
	"github.com/genert/emotion/onnx"
	"github.com/pkg/errors"
)

func loadDetector(s emotion.DetectorSettings) (emotion.FaceDetector, error) {
	if s.Backend == emotion.BackendPigo {
		return facefinder.Load(s.CascadeFile, facefinder.Params{
			MinSize:      s.PigoMinSize,
			MaxSize:      s.PigoMaxSize,
			ShiftFactor:  s.PigoShiftFactor,
			ScaleFactor:  s.ScaleFactor,
			IoUThreshold: s.PigoIoUThreshold,
			MinQuality:   s.PigoMinQuality,
		})
	}
	return cv.NewCascadeDetector(s.CascadeFile, s.ScaleFactor, s.MinNeighbors)
}

func loadEngine(s emotion.ModelSettings) (emotion.InferenceEngine, error) {
	if s.Backend == emotion.BackendONNXRuntime {
		if err := onnx.InitializeEnvironment(s.SharedLibrary); err != nil {
			return nil, err
		}
		return onnx.NewEngine(s.ModelFile)
	}
	return cv.NewDNNEngine(s.ModelFile, s.DNNBackend, s.Target)
}

// loadPipeline loads detector and model, reporting progress through status.
// Handles already opened are closed when a later step fails.
func loadPipeline(s *emotion.AppSettings, labels emotion.LabelSet, status func(string)) (*emotion.Pipeline, error) {
	status("loading face detector")
	detector, err := loadDetector(s.DetectorSettings)
	if err != nil {
		return nil, errors.Wrap(err, "Can't load face detector")
	}

	status("loading classifier model")
	engine, err := loadEngine(s.ModelSettings)
	if err != nil {
		detector.Close()
		return nil, errors.Wrap(err, "Can't load classifier model")
	}

	p, err := emotion.NewPipeline(detector, engine, labels, emotion.DecisionEngine{
		MinConfidence: s.DecisionSettings.MinConfidence,
	})
	if err != nil {
		detector.Close()
		engine.Close()
		return nil, err
	}
	return p, nil
}

func newSource(s *emotion.AppSettings) emotion.FrameSource {
	switch s.Source {
	case emotion.SourceVideo:
		return cv.NewVideoSource(s.VideoSettings.Source, s.VideoSettings.Loop)
	case emotion.SourceCamera:
		return cv.NewCameraSource(s.CameraSettings.Address, s.CameraSettings.Port, log)
	default:
		return cv.NewWebcamSource(s.VideoCaptureDeviceSettings.DeviceID)
	}
}

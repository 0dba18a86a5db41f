package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/genert/emotion"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoop struct {
	startErr error
	state    emotion.State
	starts   int
	stops    int
}

func (f *fakeLoop) Start() error {
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.state = emotion.StateRunning
	return nil
}

func (f *fakeLoop) Stop() error {
	f.stops++
	f.state = emotion.StateIdle
	return nil
}

func (f *fakeLoop) Status() string       { return "ready" }
func (f *fakeLoop) State() emotion.State { return f.state }
func (f *fakeLoop) Stats() emotion.Stats { return emotion.Stats{Ticks: 3, Decisions: 2, NoFace: 1} }

func newTestServer(loop Loop, board *Board, labels emotion.LabelSet) http.Handler {
	logger, _ := test.NewNullLogger()
	return NewServer(loop, board, func() emotion.LabelSet { return labels }, nil, logger).Handler()
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var body map[string]interface{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestStatusReportsLastDecision(t *testing.T) {
	board := &Board{}
	board.Publish(emotion.TickResult{
		Seq:  7,
		At:   time.Now(),
		Kind: emotion.ResultDecision,
		Decision: emotion.Decision{
			Label:      "happy",
			Confidence: 0.9,
			Rect:       emotion.FaceRect{X: 1, Y: 2, Width: 30, Height: 40},
		},
	})

	rec, body := do(t, newTestServer(&fakeLoop{}, board, nil), http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", body["state"])
	assert.Equal(t, "ready", body["status"])

	last := body["last"].(map[string]interface{})
	assert.Equal(t, "decision", last["kind"])
	decision := last["decision"].(map[string]interface{})
	assert.Equal(t, "happy", decision["label"])
	assert.InDelta(t, 0.9, decision["confidence"], 1e-9)
}

func TestStatusReportsTickError(t *testing.T) {
	board := &Board{}
	board.Publish(emotion.TickResult{Seq: 1, Kind: emotion.ResultError, Err: errors.New("detector exploded")})

	_, body := do(t, newTestServer(&fakeLoop{}, board, nil), http.MethodGet, "/api/status")
	last := body["last"].(map[string]interface{})
	assert.Equal(t, "error", last["kind"])
	assert.Equal(t, "detector exploded", last["error"])
	assert.Nil(t, last["decision"])
}

func TestStartStop(t *testing.T) {
	loop := &fakeLoop{}
	h := newTestServer(loop, &Board{}, nil)

	rec, body := do(t, h, http.MethodPost, "/api/start")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "running", body["state"])

	rec, body = do(t, h, http.MethodPost, "/api/stop")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", body["state"])
	assert.Equal(t, 1, loop.starts)
	assert.Equal(t, 1, loop.stops)
}

func TestStartRefused(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "not ready", err: errors.Wrap(emotion.ErrNotReady, "loading"), code: http.StatusServiceUnavailable},
		{name: "already running", err: emotion.ErrAlreadyRunning, code: http.StatusConflict},
		{name: "source failure", err: errors.New("no camera"), code: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, newTestServer(&fakeLoop{startErr: tc.err}, &Board{}, nil), http.MethodPost, "/api/start")
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.err.Error(), body["error"])
		})
	}
}

func TestLabels(t *testing.T) {
	rec, _ := do(t, newTestServer(&fakeLoop{}, &Board{}, nil), http.MethodGet, "/api/labels")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, newTestServer(&fakeLoop{}, &Board{}, emotion.LabelSet{"angry", "happy"}), http.MethodGet, "/api/labels")
	require.Equal(t, http.StatusOK, rec.Code)
	var labels []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &labels))
	assert.Equal(t, []string{"angry", "happy"}, labels)
}

func TestStartIsPostOnly(t *testing.T) {
	rec, _ := do(t, newTestServer(&fakeLoop{}, &Board{}, nil), http.MethodGet, "/api/start")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

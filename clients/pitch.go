package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/melody-pipeline/melody"
)

// --- Pitch tracking (/pitch) ---

// PitchResp is the frame series returned by the pitch service, as parallel
// arrays sampled at a fixed hop.
type PitchResp struct {
	Time       []float64 `json:"time"`
	Frequency  []float64 `json:"frequency"`
	Confidence []float64 `json:"confidence"`
	HopSeconds float64   `json:"hop_seconds"`
	SampleRate int       `json:"sample_rate,omitempty"`
	Model      string    `json:"model,omitempty"`
}

// Track validates the response and converts it to frames.
func (r *PitchResp) Track() (*melody.PitchTrack, error) {
	track, err := melody.NewPitchTrack(r.Time, r.Frequency, r.Confidence, r.HopSeconds)
	if err != nil {
		return nil, err
	}
	return &track, nil
}

// Pitch uploads an audio file and returns the tracker's frequency and
// confidence series. model selects the tracker size (tiny … full).
func (h *HTTP) Pitch(ctx context.Context, url, audioPath, model string) (*PitchResp, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if model != "" {
		if err = w.WriteField("model", model); err != nil {
			return nil, err
		}
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/pitch", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pitch %s: %s", resp.Status, string(body))
	}

	var out PitchResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("pitch decode: %w", err)
	}
	return &out, nil
}

// PitchService extracts pitch through the remote tracker. Log defaults to
// the standard logrus logger.
type PitchService struct {
	HTTP  *HTTP
	URL   string
	Model string
	Log   logrus.FieldLogger
}

func (s *PitchService) Extract(ctx context.Context, audioPath string) (*melody.PitchTrack, error) {
	start := time.Now()
	resp, err := s.HTTP.Pitch(ctx, s.URL, audioPath, s.Model)
	if err != nil {
		return nil, err
	}
	loggerOr(s.Log).WithFields(logrus.Fields{
		"frames":  len(resp.Frequency),
		"hop":     resp.HopSeconds,
		"model":   s.Model,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("pitch extracted")
	return resp.Track()
}

// FramesFile reads a previously extracted pitch series from disk. The path
// handed to Extract names a JSON file in the same shape as the pitch
// service's response.
type FramesFile struct{}

func (FramesFile) Extract(_ context.Context, path string) (*melody.PitchTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var resp PitchResp
	if err := json.NewDecoder(f).Decode(&resp); err != nil {
		return nil, fmt.Errorf("frames decode %s: %w", path, err)
	}
	return resp.Track()
}

package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/maastricht-university/melody-pipeline/melody"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPitchService(t *testing.T) {
	audio := writeTemp(t, "hum.wav", "RIFF....WAVE")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pitch" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if got := r.FormValue("model"); got != "tiny" {
			t.Errorf("model = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		if hdr.Filename != "hum.wav" || string(body) != "RIFF....WAVE" {
			t.Errorf("upload = %s %q", hdr.Filename, body)
		}
		json.NewEncoder(w).Encode(PitchResp{
			Time:       []float64{0, 0.01, 0.02},
			Frequency:  []float64{440, 441, 0},
			Confidence: []float64{0.9, 0.8, 0.1},
			HopSeconds: 0.01,
		})
	}))
	defer srv.Close()

	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	svc := &PitchService{HTTP: NewHTTP(0), URL: srv.URL, Model: "tiny", Log: log.WithField("session", "s1")}
	track, err := svc.Extract(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}
	if track.Hop != 0.01 || len(track.Frames) != 3 || track.Frames[1].FrequencyHz != 441 {
		t.Fatalf("track = %+v", track)
	}
	e := hook.LastEntry()
	if e == nil || e.Message != "pitch extracted" || e.Data["session"] != "s1" || e.Data["frames"] != 3 {
		t.Errorf("log entry = %+v", e)
	}
}

func TestPitchServiceUpstreamError(t *testing.T) {
	audio := writeTemp(t, "hum.wav", "x")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := (&PitchService{HTTP: NewHTTP(0), URL: srv.URL}).Extract(context.Background(), audio)
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("err = %v", err)
	}
}

func TestPitchServiceMalformed(t *testing.T) {
	audio := writeTemp(t, "hum.wav", "x")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"time":[0,0.01],"frequency":[440],"confidence":[0.9,0.9],"hop_seconds":0.01}`))
	}))
	defer srv.Close()

	_, err := (&PitchService{HTTP: NewHTTP(0), URL: srv.URL}).Extract(context.Background(), audio)
	if !errors.Is(err, melody.ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}
}

func TestFramesFile(t *testing.T) {
	p := writeTemp(t, "frames.json", `{"frequency":[220,220,220],"confidence":[0.9,0.9,0.9],"hop_seconds":0.02}`)
	track, err := FramesFile{}.Extract(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(track.Frames) != 3 || track.Frames[2].Time != 0.04 {
		t.Fatalf("track = %+v", track)
	}

	bad := writeTemp(t, "bad.json", `{"frequency":`)
	if _, err := (FramesFile{}).Extract(context.Background(), bad); err == nil {
		t.Fatal("expected decode error")
	}
}

func testRequest() LyricRequest {
	return LyricRequest{
		Budget:   melody.SyllableBudget{TargetTotalSyllables: 14, PerPhraseTargets: []int{4, 4}, PhraseCount: 2},
		Summary:  melody.MelodySummary{NumNotes: 8, TotalDuration: 4.5, KeyEstimate: "F"},
		Creative: CreativeParams{Prompt: "A love song about summer nights", Mood: "nostalgic"},
	}
}

func TestBuildLyricPrompt(t *testing.T) {
	system, user := BuildLyricPrompt(testRequest())
	if !strings.Contains(system, "Return ONLY the lyrics") {
		t.Errorf("system prompt = %q", system)
	}
	for _, want := range []string{
		"for a pop song",
		"Total duration: 4.5 seconds",
		"Number of melodic phrases: 2",
		"Estimated total syllables: 14",
		"Syllables per phrase: 4, 4",
		"Tonal center: F",
		"Main idea/prompt: A love song about summer nights",
		"Mood: nostalgic",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
	if strings.Contains(user, "Theme:") || strings.Contains(user, "Style reference:") {
		t.Errorf("unset fields rendered:\n%s", user)
	}
}

func TestLyricService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lyrics" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req LyricsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
			return
		}
		if req.Request.Budget.TargetTotalSyllables != 14 || !strings.Contains(req.User, "LYRICS:") {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(LyricsResp{Lyrics: "\nHello there\nMy old friend\n"})
	}))
	defer srv.Close()

	text, err := (&LyricService{HTTP: NewHTTP(0), URL: srv.URL}).Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if text != "Hello there\nMy old friend" {
		t.Fatalf("text = %q", text)
	}
}

func TestOpenAILyrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth = %q", got)
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Error(err)
			return
		}
		if body.Model != "gpt-4o" || len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("body = %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "  Summer nights\nNeon lights  "}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	writer, err := NewOpenAILyrics("test-key", srv.URL+"/v1/", "gpt-4o")
	if err != nil {
		t.Fatal(err)
	}
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	writer.Log = log
	text, err := writer.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if text != "Summer nights\nNeon lights" {
		t.Fatalf("text = %q", text)
	}
	if e := hook.LastEntry(); e == nil || e.Data["completion_tokens"] != int64(5) {
		t.Errorf("log entry = %+v", e)
	}
}

func TestNewOpenAILyricsValidation(t *testing.T) {
	if _, err := NewOpenAILyrics("", "", "gpt-4o"); err == nil {
		t.Error("expected missing key error")
	}
	if _, err := NewOpenAILyrics("k", "", ""); err == nil {
		t.Error("expected missing model error")
	}
}

func TestPublishResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/melody-results" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var got map[string]any
		json.NewDecoder(r.Body).Decode(&got)
		if got["session_id"] != "abc" {
			t.Errorf("payload = %v", got)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"stored","id":"r-1"}`))
	}))
	defer srv.Close()

	resp, err := NewHTTP(0).PublishResult(context.Background(), srv.URL, map[string]string{"session_id": "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != "stored" || resp.ID != "r-1" {
		t.Fatalf("resp = %+v", resp)
	}
}

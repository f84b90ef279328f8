package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// --- Lyric writer (/lyrics) ---
type LyricsReq struct {
	System  string       `json:"system"`
	User    string       `json:"user"`
	Request LyricRequest `json:"request"`
}
type LyricsResp struct {
	Lyrics string `json:"lyrics"`
}

func (h *HTTP) Lyrics(ctx context.Context, url string, lr LyricRequest) (*LyricsResp, error) {
	system, user := BuildLyricPrompt(lr)
	payload, _ := json.Marshal(LyricsReq{System: system, User: user, Request: lr})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/lyrics", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("lyrics %s: %s", resp.Status, string(body))
	}

	var out LyricsResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("lyrics decode: %w", err)
	}
	return &out, nil
}

// LyricService writes lyrics through a self-hosted lyric endpoint.
type LyricService struct {
	HTTP *HTTP
	URL  string
}

func (s *LyricService) Generate(ctx context.Context, req LyricRequest) (string, error) {
	resp, err := s.HTTP.Lyrics(ctx, s.URL, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Lyrics), nil
}

package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

func mkSessionDir(outputsRoot, sessionID string) (string, error) {
	ts := time.Now().Format("20060102-150405")
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}
	dir := filepath.Join(outputsRoot, "session_"+ts+"_"+short)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeAs(format, dir, name string, v any) error {
	if format == "yaml" {
		return writeYAML(filepath.Join(dir, name+".yaml"), v)
	}
	return writeJSON(filepath.Join(dir, name+".json"), v)
}

// persist writes analysis.<format> and result.<format> into a fresh session
// directory and returns that directory.
func persist(outputsRoot, format string, res *Result) (string, error) {
	dir, err := mkSessionDir(outputsRoot, res.SessionID)
	if err != nil {
		return "", err
	}
	if err := writeAs(format, dir, "analysis", res.Analysis); err != nil {
		return "", err
	}
	if err := writeAs(format, dir, "result", res.Response()); err != nil {
		return "", err
	}
	return dir, nil
}

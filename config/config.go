package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Service struct {
	URL string `yaml:"url"`
}
type PitchService struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"` // tiny, small, medium, large, full
}
type LyricsService struct {
	Provider  string `yaml:"provider"` // openai, anthropic or http
	URL       string `yaml:"url"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}
// Anthropic is reached through its OpenAI-compatible chat endpoint.
var lyricProviders = map[string]LyricsService{
	"openai":    {Model: "gpt-4o", APIKeyEnv: "OPENAI_API_KEY"},
	"anthropic": {BaseURL: "https://api.anthropic.com/v1/", Model: "claude-3-5-sonnet-20241022", APIKeyEnv: "ANTHROPIC_API_KEY"},
}

// WithDefaults fills the model, key variable and base URL left blank with
// the provider's defaults.
func (l LyricsService) WithDefaults() LyricsService {
	d := lyricProviders[l.Provider]
	if l.BaseURL == "" {
		l.BaseURL = d.BaseURL
	}
	if l.Model == "" {
		l.Model = d.Model
	}
	if l.APIKeyEnv == "" {
		l.APIKeyEnv = d.APIKeyEnv
	}
	return l
}

type Services struct {
	Pitch   PitchService  `yaml:"pitch"`
	Lyrics  LyricsService `yaml:"lyrics"`
	Results Service       `yaml:"results"`
}
type Melody struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	MinNoteDuration     float64 `yaml:"min_note_duration"`
	GapThreshold        float64 `yaml:"gap_threshold"`
	PhraseBreak         float64 `yaml:"phrase_break"`
	SyllablesPerSecond  float64 `yaml:"syllables_per_second"`
	MinNotes            int     `yaml:"min_notes"`
}
type HTTP struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}
type Root struct {
	Pipeline struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		LogLvl  string `yaml:"log_level"`
	} `yaml:"pipeline"`
	Services Services `yaml:"services"`
	Melody   Melody   `yaml:"melody"`
	HTTP     HTTP     `yaml:"http"`
	Paths    struct {
		Outputs string `yaml:"outputs"`
	} `yaml:"paths"`
	Output struct {
		Format  string `yaml:"format"` // json or yaml
		Persist bool   `yaml:"persist"`
	} `yaml:"output"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Root {
	var c Root
	c.Pipeline.Name = "melody-pipeline"
	c.Pipeline.Version = "0.1.0"
	c.Pipeline.LogLvl = "info"
	c.Services.Pitch.Model = "full"
	c.Services.Lyrics.Provider = "openai"
	c.Melody = Melody{
		ConfidenceThreshold: 0.5,
		MinNoteDuration:     0.1,
		GapThreshold:        0.2,
		PhraseBreak:         0.3,
		SyllablesPerSecond:  3.0,
		MinNotes:            3,
	}
	c.HTTP.TimeoutSeconds = 60
	c.Paths.Outputs = "outputs"
	c.Output.Format = "json"
	return &c
}

// Load reads a YAML file on top of Default. With an empty path it tries
// config/<CONFIG_ENV>/config.yaml and then config.yaml, and falls back to
// the defaults when neither exists.
func Load(path string) (*Root, error) {
	cfg := Default()

	guess := []string{path}
	if path == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		guess = []string{
			filepath.Join("config", env, "config.yaml"),
			"config.yaml",
		}
	}
	for _, p := range guess {
		f, err := os.Open(p)
		if errors.Is(err, os.ErrNotExist) && path == "" {
			continue
		}
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", p, err)
		}
		break
	}
	return cfg, nil
}

// NewViper returns a viper instance reading MELODY_* environment variables,
// e.g. MELODY_MELODY_MIN_NOTES or MELODY_SERVICES_PITCH_URL.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("melody")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides copies every key that viper knows about (bound flags or
// environment variables) onto the loaded configuration.
func ApplyOverrides(c *Root, v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	integer := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	str("pipeline.log_level", &c.Pipeline.LogLvl)
	str("services.pitch.url", &c.Services.Pitch.URL)
	str("services.pitch.model", &c.Services.Pitch.Model)
	str("services.lyrics.provider", &c.Services.Lyrics.Provider)
	str("services.lyrics.url", &c.Services.Lyrics.URL)
	str("services.lyrics.base_url", &c.Services.Lyrics.BaseURL)
	str("services.lyrics.model", &c.Services.Lyrics.Model)
	str("services.lyrics.api_key_env", &c.Services.Lyrics.APIKeyEnv)
	str("services.results.url", &c.Services.Results.URL)
	num("melody.confidence_threshold", &c.Melody.ConfidenceThreshold)
	num("melody.min_note_duration", &c.Melody.MinNoteDuration)
	num("melody.gap_threshold", &c.Melody.GapThreshold)
	num("melody.phrase_break", &c.Melody.PhraseBreak)
	num("melody.syllables_per_second", &c.Melody.SyllablesPerSecond)
	integer("melody.min_notes", &c.Melody.MinNotes)
	integer("http.timeout_seconds", &c.HTTP.TimeoutSeconds)
	str("paths.outputs", &c.Paths.Outputs)
	str("output.format", &c.Output.Format)
	if v.IsSet("output.persist") {
		c.Output.Persist = v.GetBool("output.persist")
	}
}

func (c *Root) Validate() error {
	m := c.Melody
	switch {
	case m.ConfidenceThreshold < 0 || m.ConfidenceThreshold >= 1:
		return fmt.Errorf("melody.confidence_threshold %v outside [0,1)", m.ConfidenceThreshold)
	case m.MinNoteDuration < 0:
		return fmt.Errorf("melody.min_note_duration %v is negative", m.MinNoteDuration)
	case m.GapThreshold < 0:
		return fmt.Errorf("melody.gap_threshold %v is negative", m.GapThreshold)
	case m.PhraseBreak < 0:
		return fmt.Errorf("melody.phrase_break %v is negative", m.PhraseBreak)
	case m.SyllablesPerSecond <= 0:
		return fmt.Errorf("melody.syllables_per_second %v must be positive", m.SyllablesPerSecond)
	case m.MinNotes < 0:
		return fmt.Errorf("melody.min_notes %d is negative", m.MinNotes)
	}
	switch c.Output.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("output.format %q: want json or yaml", c.Output.Format)
	}
	switch c.Services.Lyrics.Provider {
	case "openai", "anthropic", "http":
	default:
		return fmt.Errorf("services.lyrics.provider %q: want openai, anthropic or http", c.Services.Lyrics.Provider)
	}
	return nil
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }

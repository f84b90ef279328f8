package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/melody-pipeline/clients"
	cfg "github.com/maastricht-university/melody-pipeline/config"
	"github.com/maastricht-university/melody-pipeline/melody"
	"github.com/maastricht-university/melody-pipeline/orchestrator"
)

// Exit codes distinguish a bad recording from everything else.
const (
	exitFailure  = 1
	exitRejected = 2
	exitBadInput = 3
)

func exitCode(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrInsufficientMelody):
		return exitRejected
	case errors.Is(err, melody.ErrMalformedInput):
		return exitBadInput
	}
	return exitFailure
}

type app struct {
	v          *viper.Viper
	configPath string
	conf       *cfg.Root
	out        io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{v: cfg.NewViper()}

	root := &cobra.Command{
		Use:   "melody-pipeline",
		Short: "Turn a hummed melody into a syllable budget and lyrics",
		Long: `melody-pipeline - melody analysis for lyric writing.

The pitch of a recording is tracked by a remote model, segmented into
notes and phrases, summarized, and turned into a syllable budget that
steers a lyric writer. The returned lyrics are scored against the budget.

Examples:
  melody-pipeline analyze hum.wav
  melody-pipeline analyze --frames frames.json
  melody-pipeline run hum.wav --prompt "summer nights" --genre pop --mood nostalgic
  echo "Hello there" | melody-pipeline syllables`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			if err := a.bindFlags(cmd); err != nil {
				return err
			}
			return a.loadConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to config.yaml")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("format", "", "output format (json or yaml)")
	pf.Bool("persist", false, "write the session bundle under paths.outputs")

	root.AddCommand(a.analyzeCmd(), a.runCmd(), a.syllablesCmd())
	return root
}

func (a *app) loadConfig() error {
	conf, err := cfg.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(conf, a.v)
	if err := conf.Validate(); err != nil {
		return err
	}
	lvl, err := logrus.ParseLevel(conf.Pipeline.LogLvl)
	if err != nil {
		return fmt.Errorf("pipeline.log_level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	a.conf = conf
	return nil
}

// flagKeys maps CLI flags onto config keys. Only the flags of the command
// being executed are bound, since several subcommands share names.
var flagKeys = map[string]string{
	"log-level":       "pipeline.log_level",
	"format":          "output.format",
	"persist":         "output.persist",
	"pitch-url":       "services.pitch.url",
	"pitch-model":     "services.pitch.model",
	"confidence":      "melody.confidence_threshold",
	"min-note":        "melody.min_note_duration",
	"phrase-break":    "melody.phrase_break",
	"min-notes":       "melody.min_notes",
	"lyrics-provider": "services.lyrics.provider",
	"lyrics-model":    "services.lyrics.model",
}

func (a *app) bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func addMelodyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("pitch-url", "", "pitch service base URL")
	f.String("pitch-model", "", "pitch model size (tiny, small, medium, large, full)")
	f.Float64("confidence", 0, "confidence threshold")
	f.Float64("min-note", 0, "minimum note duration in seconds")
	f.Float64("phrase-break", 0, "silence in seconds that ends a phrase")
	f.Int("min-notes", 0, "notes required to accept a recording")
}

func (a *app) analyzeCmd() *cobra.Command {
	var frames string
	cmd := &cobra.Command{
		Use:   "analyze [audio]",
		Short: "Extract notes, phrases, summary and syllable budget",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				pitch orchestrator.PitchOracle
				input string
			)
			h := clients.NewHTTP(cfg.DurSeconds(a.conf.HTTP.TimeoutSeconds))
			switch {
			case frames != "":
				pitch, input = clients.FramesFile{}, frames
			case len(args) == 1:
				p, err := orchestrator.NewPitchOracle(a.conf, h, logrus.StandardLogger())
				if err != nil {
					return err
				}
				pitch, input = p, args[0]
			default:
				return errors.New("usage: melody-pipeline analyze <audio> | --frames <frames.json>")
			}

			p := orchestrator.NewPipeline(a.conf, pitch, nil, orchestrator.WithHTTP(h))
			analysis, err := p.Analyze(cmd.Context(), input)
			if err != nil {
				return err
			}
			return a.print(analysis)
		},
	}
	cmd.Flags().StringVar(&frames, "frames", "", "read a pitch series from JSON instead of calling the pitch service")
	addMelodyFlags(cmd)
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	var creative clients.CreativeParams
	cmd := &cobra.Command{
		Use:   "run <audio>",
		Short: "Analyze a recording and write lyrics for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := clients.NewHTTP(cfg.DurSeconds(a.conf.HTTP.TimeoutSeconds))
			pitch, err := orchestrator.NewPitchOracle(a.conf, h, logrus.StandardLogger())
			if err != nil {
				return err
			}
			lyrics, err := orchestrator.NewLyricOracle(a.conf, h, logrus.StandardLogger())
			if err != nil {
				return err
			}
			p := orchestrator.NewPipeline(a.conf, pitch, lyrics, orchestrator.WithHTTP(h))
			res, err := p.Run(cmd.Context(), args[0], creative)
			if err != nil {
				return err
			}
			return a.print(res.Response())
		},
	}
	f := cmd.Flags()
	f.StringVar(&creative.Prompt, "prompt", "", "creative prompt for the lyrics")
	f.StringVar(&creative.Genre, "genre", "pop", "music genre")
	f.StringVar(&creative.Theme, "theme", "", "song theme")
	f.StringVar(&creative.Mood, "mood", "", "desired mood")
	f.StringVar(&creative.Style, "style", "", "reference artist style")
	f.String("lyrics-provider", "", "lyrics provider (openai, anthropic or http)")
	f.String("lyrics-model", "", "lyrics model name")
	cmd.MarkFlagRequired("prompt")
	addMelodyFlags(cmd)
	return cmd
}

func (a *app) syllablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "syllables [file]",
		Short: "Score text with the vowel-group syllable counter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			b, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			return a.print(melody.ScoreLyrics(string(b)))
		},
	}
}

func (a *app) print(v any) error {
	if a.conf.Output.Format == "yaml" {
		enc := yaml.NewEncoder(a.out)
		defer enc.Close()
		return enc.Encode(v)
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

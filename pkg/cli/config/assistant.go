package config

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"math"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/zia/pkg/domain/model"
	"github.com/secmon-lab/zia/pkg/service/rules"
	"github.com/secmon-lab/zia/pkg/service/similarity"
	"github.com/secmon-lab/zia/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// AppConfig is the optional TOML file tuning how questions are answered
type AppConfig struct {
	Assistant  AssistantSection  `toml:"assistant"`
	Similarity SimilaritySection `toml:"similarity"`
	Knowledge  KnowledgeSection  `toml:"knowledge"`
	Rules      []rules.Rule      `toml:"rules"`
}

type AssistantSection struct {
	Name string `toml:"name"`
}

type SimilaritySection struct {
	Threshold *float64 `toml:"threshold"`
}

type KnowledgeSection struct {
	DefaultConfidence *float64 `toml:"default_confidence"`
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if t := a.Similarity.Threshold; t != nil && !inUnitRange(*t) {
		return goerr.Wrap(ErrInvalidConfig, "similarity threshold must be between 0 and 1", goerr.V("threshold", *t))
	}
	if c := a.Knowledge.DefaultConfidence; c != nil && !inUnitRange(*c) {
		return goerr.Wrap(ErrInvalidConfig, "default confidence must be between 0 and 1", goerr.V("confidence", *c))
	}

	ids := make(map[string]bool)
	for _, r := range a.Rules {
		if err := r.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid rule", goerr.V("id", r.ID), goerr.V("cause", err.Error()))
		}
		if ids[r.ID] {
			return goerr.Wrap(ErrInvalidConfig, "duplicate rule ID", goerr.V("id", r.ID))
		}
		ids[r.ID] = true
	}
	return nil
}

// AssistantName returns the configured name or the default one
func (a *AppConfig) AssistantName() string {
	if a.Assistant.Name == "" {
		return rules.DefaultAssistantName
	}
	return a.Assistant.Name
}

// Threshold returns the configured similarity threshold or the default one
func (a *AppConfig) Threshold() float64 {
	if a.Similarity.Threshold == nil {
		return similarity.DefaultThreshold
	}
	return *a.Similarity.Threshold
}

// DefaultConfidence returns the confidence given to taught knowledge
func (a *AppConfig) DefaultConfidence() float64 {
	if a.Knowledge.DefaultConfidence == nil {
		return model.DefaultConfidence
	}
	return *a.Knowledge.DefaultConfidence
}

// LoadAppConfiguration loads the application configuration from a TOML file.
// Unknown keys are rejected.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// Assistant holds the CLI flag pointing at the TOML configuration
type Assistant struct {
	path string
}

func (x *Assistant) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file (assistant name, similarity threshold, rules)",
			Category:    "Assistant",
			Sources:     cli.EnvVars("ZIA_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *Assistant) Path() string {
	return x.path
}

func (x Assistant) LogValue() slog.Value {
	return slog.GroupValue(slog.String("config", x.path))
}

// Load returns the file configuration, or an empty one when no path is set
func (x *Assistant) Load() (*AppConfig, error) {
	if x.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfiguration(x.path)
}

// Configure loads the configuration and turns it into use case options
func (x *Assistant) Configure() ([]usecase.Option, error) {
	cfg, err := x.Load()
	if err != nil {
		return nil, err
	}
	return cfg.UseCaseOptions()
}

// UseCaseOptions builds the rule engine and scorer described by the configuration
func (a *AppConfig) UseCaseOptions() ([]usecase.Option, error) {
	engine, err := rules.New(
		rules.WithAssistantName(a.AssistantName()),
		rules.WithRules(a.Rules),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build rule engine")
	}

	scorer, err := similarity.New(a.Threshold())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build similarity scorer")
	}

	return []usecase.Option{
		usecase.WithFallbackResponder(engine),
		usecase.WithScorer(scorer),
		usecase.WithDefaultConfidence(a.DefaultConfidence()),
	}, nil
}

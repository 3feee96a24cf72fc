// Package envconfig loads mmio configuration.
//
// Precedence, lowest first: built-in defaults, an optional YAML file, the
// .env hierarchy (see DiscoverEnvFiles), and finally the process
// environment. Loading is always an explicit call; nothing is read at
// import time.
package envconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/martinemde/mmio/mediaio"
)

// Config is the resolved configuration for the CLI and library callers.
type Config struct {
	APIKey          string `yaml:"api_key" env:"GEMINI_API_KEY" validate:"required"`
	BaseURL         string `yaml:"base_url" env:"MMIO_BASE_URL" validate:"omitempty,url"`
	MediaResolution string `yaml:"media_resolution" env:"MMIO_MEDIA_RESOLUTION" validate:"oneof=media_resolution_low media_resolution_medium media_resolution_high"`
	ThinkingLevel   string `yaml:"thinking_level" env:"MMIO_THINKING_LEVEL" validate:"oneof=minimal low high"`
	OutputDir       string `yaml:"output_dir" env:"MMIO_OUTPUT_DIR" validate:"required"`

	// TextProvider routes text operations through gollm when set
	// (e.g. "openai", "anthropic"); empty uses the Gemini backend.
	TextProvider string `yaml:"text_provider" env:"MMIO_TEXT_PROVIDER"`
	TextModel    string `yaml:"text_model" env:"MMIO_TEXT_MODEL"`

	Models ModelsConfig `yaml:"models" envPrefix:"MMIO_MODEL_"`
	Poll   PollConfig   `yaml:"poll" envPrefix:"MMIO_POLL_"`
}

// ModelsConfig overrides the default model per operation.
type ModelsConfig struct {
	Analyze    string `yaml:"analyze" env:"ANALYZE"`
	Transcribe string `yaml:"transcribe" env:"TRANSCRIBE"`
	Image      string `yaml:"image" env:"IMAGE"`
	Video      string `yaml:"video" env:"VIDEO"`
}

// PollConfig bounds upload and job polling. Zero JobTimeout and zero
// JobMaxPolls poll until the job reaches a terminal state.
type PollConfig struct {
	UploadInterval time.Duration `yaml:"upload_interval" env:"UPLOAD_INTERVAL" validate:"gt=0"`
	JobInterval    time.Duration `yaml:"job_interval" env:"JOB_INTERVAL" validate:"gt=0"`
	JobTimeout     time.Duration `yaml:"job_timeout" env:"JOB_TIMEOUT" validate:"gte=0"`
	JobMaxPolls    int           `yaml:"job_max_polls" env:"JOB_MAX_POLLS" validate:"gte=0"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		MediaResolution: string(mediaio.ResolutionMedium),
		ThinkingLevel:   string(mediaio.ThinkingLow),
		OutputDir:       "./generated",
		Poll: PollConfig{
			UploadInterval: mediaio.DefaultUploadPollInterval,
			JobInterval:    mediaio.DefaultJobPollInterval,
		},
	}
}

// ModelDefaults converts the model overrides for mediaio.WithModels.
func (c *Config) ModelDefaults() mediaio.ModelDefaults {
	return mediaio.ModelDefaults{
		Analyze:    c.Models.Analyze,
		Transcribe: c.Models.Transcribe,
		Image:      c.Models.Image,
		Video:      c.Models.Video,
	}
}

// UploadPollPolicy returns the upload processing poll policy.
func (c *Config) UploadPollPolicy() mediaio.PollPolicy {
	return mediaio.PollPolicy{Interval: c.Poll.UploadInterval}
}

// JobPollPolicy returns the generation job poll policy.
func (c *Config) JobPollPolicy() mediaio.PollPolicy {
	return mediaio.PollPolicy{
		Interval:    c.Poll.JobInterval,
		MaxAttempts: c.Poll.JobMaxPolls,
		Timeout:     c.Poll.JobTimeout,
	}
}

// ErrMissingAPIKey is returned when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not set. Add it to a .env file or export it in your shell")

// Loader assembles a Config from its sources.
type Loader struct {
	configPath string
	homeDir    string
	workDir    string
	extraDirs  []string
	environ    func() []string
	logger     *zap.Logger

	// DotEnv holds the merged .env values after Load, before the process
	// environment is applied.
	DotEnv map[string]string
}

// NewLoader creates a Loader using the user's home directory, the current
// working directory and the process environment.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	return &Loader{
		homeDir: home,
		workDir: wd,
		environ: os.Environ,
		logger:  zap.NewNop(),
	}
}

// WithConfigPath sets an optional YAML file. A missing file is an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithHomeDir overrides the home directory searched for .env files.
func (l *Loader) WithHomeDir(dir string) *Loader {
	l.homeDir = dir
	return l
}

// WithWorkDir overrides the directory the project walk starts from.
func (l *Loader) WithWorkDir(dir string) *Loader {
	l.workDir = dir
	return l
}

// WithExtraDirs adds directories whose .env files take highest .env
// precedence, such as the directory holding the executable.
func (l *Loader) WithExtraDirs(dirs ...string) *Loader {
	l.extraDirs = append(l.extraDirs, dirs...)
	return l
}

// WithEnviron replaces the process environment source.
func (l *Loader) WithEnviron(environ func() []string) *Loader {
	l.environ = environ
	return l
}

// WithLogger sets the logger used to report skipped files.
func (l *Loader) WithLogger(logger *zap.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Load resolves, merges and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := loadYAML(l.configPath, &cfg); err != nil {
			return nil, err
		}
	}

	files := DiscoverEnvFiles(l.homeDir, l.workDir, l.extraDirs...)
	l.DotEnv = MergeEnvFiles(files, func(path string, err error) {
		l.logger.Warn("skipping unparseable env file", zap.String("path", path), zap.Error(err))
	})
	l.logger.Debug("env files loaded", zap.Strings("files", files), zap.Int("vars", len(l.DotEnv)))

	environment := make(map[string]string, len(l.DotEnv))
	for k, v := range l.DotEnv {
		environment[k] = v
	}
	if l.environ != nil {
		for k, v := range parseEnviron(l.environ()) {
			environment[k] = v
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Export sets every .env value missing from the process environment, so
// libraries that read their own variables (for example gollm provider
// keys) see them too. Existing variables are never overridden.
func (l *Loader) Export() error {
	for k, v := range l.DotEnv {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("failed to export %s: %w", k, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg. A missing API key yields ErrMissingAPIKey.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.StructField() == "APIKey" {
			return ErrMissingAPIKey
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func parseEnviron(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			out[k] = v
		}
	}
	return out
}

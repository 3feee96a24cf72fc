// Command mmio analyzes and generates media from the command line.
//
//	mmio process photo.jpg -p "describe the scene"
//	mmio imagine "a lighthouse at dusk" -r 16:9 -o lighthouse.png
//	mmio video "waves rolling in" --resolution 720p
//	mmio transcribe talk.mp3 -t --speakers
//	mmio convert report.pdf -f json -o report.json
//
// Exit status is 2 when the key has no quota or billing is required,
// 1 for any other failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/martinemde/mmio/envconfig"
	"github.com/martinemde/mmio/mediaio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, &app{stdout: os.Stdout}, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorText(err))
		os.Exit(exitCode(err))
	}
}

// execute runs the command line and releases the client whether or not the
// command succeeded.
func execute(ctx context.Context, a *app, args []string) error {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	err := cmd.ExecuteContext(ctx)
	if closeErr := a.teardown(); err == nil {
		err = closeErr
	}
	return err
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case mediaio.IsTerminal(err):
		return 2
	default:
		return 1
	}
}

// errorText formats err for stderr. Quota and billing errors already carry
// their remediation text and are printed verbatim.
func errorText(err error) string {
	if mediaio.IsTerminal(err) {
		return err.Error()
	}
	return "Error: " + err.Error()
}

// mediaClient is the subset of *mediaio.Client the commands use.
type mediaClient interface {
	Analyze(ctx context.Context, src mediaio.Source, prompt string, opts mediaio.AnalyzeOptions) (*mediaio.AnalysisResult, error)
	GenerateImage(ctx context.Context, prompt string, opts mediaio.ImageOptions) (*mediaio.GeneratedArtifact, error)
	GenerateVideo(ctx context.Context, prompt string, opts mediaio.VideoOptions) (*mediaio.GeneratedArtifact, error)
	Transcribe(ctx context.Context, src mediaio.Source, opts mediaio.TranscribeOptions) (*mediaio.AnalysisResult, error)
	ConvertDocument(ctx context.Context, src mediaio.Source, format mediaio.DocumentFormat, model string) (*mediaio.AnalysisResult, error)
	Close() error
}

// app holds state shared by the commands.
type app struct {
	configPath   string
	verbose      bool
	textProvider string

	cfg    *envconfig.Config
	client mediaClient
	logger *zap.Logger
	stdout io.Writer
}

// setup loads configuration and builds the client. A preset client is kept.
func (a *app) setup(ctx context.Context) error {
	if a.logger == nil {
		a.logger = zap.NewNop()
		if a.verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			a.logger = l
		}
	}
	if a.client != nil {
		if a.cfg == nil {
			cfg := envconfig.Defaults()
			a.cfg = &cfg
		}
		return nil
	}

	loader := envconfig.NewLoader().WithLogger(a.logger).WithConfigPath(a.configPath)
	if exe, err := os.Executable(); err == nil {
		loader = loader.WithExtraDirs(filepath.Dir(exe))
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if err := loader.Export(); err != nil {
		return err
	}
	a.cfg = cfg

	backendOpts := []mediaio.GeminiOption{mediaio.WithGeminiLogger(a.logger)}
	if cfg.BaseURL != "" {
		backendOpts = append(backendOpts, mediaio.WithGeminiBaseURL(cfg.BaseURL))
	}
	backend, err := mediaio.NewGeminiBackend(ctx, cfg.APIKey, backendOpts...)
	if err != nil {
		return err
	}

	opts := []mediaio.ClientOption{
		mediaio.WithLogger(a.logger),
		mediaio.WithModels(cfg.ModelDefaults()),
		mediaio.WithDefaults(mediaio.MediaResolution(cfg.MediaResolution), mediaio.ThinkingLevel(cfg.ThinkingLevel)),
		mediaio.WithPollPolicies(cfg.UploadPollPolicy(), cfg.JobPollPolicy()),
		mediaio.WithMetrics(prometheus.NewRegistry()),
	}
	provider := a.textProvider
	if provider == "" {
		provider = cfg.TextProvider
	}
	if provider != "" {
		if cfg.TextModel == "" {
			return fmt.Errorf("text provider %q requires MMIO_TEXT_MODEL", provider)
		}
		text, err := mediaio.NewGollmText(provider, "", mediaio.WithGollmModel(cfg.TextModel))
		if err != nil {
			return err
		}
		opts = append(opts,
			mediaio.WithTextGenerator(text),
			mediaio.WithModels(mediaio.ModelDefaults{Analyze: cfg.TextModel, Transcribe: cfg.TextModel}))
	}
	a.client = mediaio.NewClient(backend, opts...)
	return nil
}

func (a *app) teardown() error {
	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
		a.client = nil
	}
	if a.logger != nil {
		// Sync fails on non-file stderr; nothing useful to report.
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

package mediaio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/teilomillet/gollm"
)

// jsonSystemPrompt is sent when a caller asks for JSON output from a
// provider without a native response mime type.
const jsonSystemPrompt = "Respond with a single valid JSON document and nothing else."

// GollmText is a TextGenerator backed by any gollm provider. It only
// accepts textual parts: text/* and application/json inline data is folded
// into the prompt, binary media and file references are rejected.
type GollmText struct {
	provider string
	model    string

	mu  sync.Mutex // guards SetOption + Generate on the shared llm
	llm gollm.LLM
}

// GollmOption configures a GollmText.
type GollmOption func(*gollmConfig)

type gollmConfig struct {
	model       string
	maxTokens   int
	temperature float64
	extraOpts   []gollm.ConfigOption
}

// WithGollmModel sets the default model.
func WithGollmModel(model string) GollmOption {
	return func(c *gollmConfig) { c.model = model }
}

// WithGollmMaxTokens sets the default max tokens.
func WithGollmMaxTokens(n int) GollmOption {
	return func(c *gollmConfig) { c.maxTokens = n }
}

// WithGollmTemperature sets the default temperature.
func WithGollmTemperature(t float64) GollmOption {
	return func(c *gollmConfig) { c.temperature = t }
}

// WithGollmOptions adds extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) GollmOption {
	return func(c *gollmConfig) { c.extraOpts = append(c.extraOpts, opts...) }
}

// NewGollmText creates a text generator for provider. If apiKey is empty,
// gollm reads it from the provider's environment variable.
func NewGollmText(provider, apiKey string, opts ...GollmOption) (*GollmText, error) {
	cfg := &gollmConfig{maxTokens: 8192, temperature: 0.2}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.model == "" {
		cfg.model = DefaultAnalyzeModel
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(cfg.model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gollm llm for provider %s: %w", provider, err)
	}
	return &GollmText{provider: provider, model: cfg.model, llm: llm}, nil
}

// NewGollmTextFromLLM wraps an existing gollm.LLM.
func NewGollmTextFromLLM(provider string, llm gollm.LLM) *GollmText {
	return &GollmText{provider: provider, llm: llm}
}

// Provider returns the gollm provider name.
func (g *GollmText) Provider() string {
	return g.provider
}

// GenerateText implements TextGenerator.
func (g *GollmText) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	text, system, err := composePrompt(req)
	if err != nil {
		return "", err
	}
	var promptOpts []gollm.PromptOption
	if system != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(system, gollm.CacheTypeEphemeral))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if req.Model != "" {
		g.llm.SetOption("model", req.Model)
	}
	return g.llm.Generate(ctx, gollm.NewPrompt(text, promptOpts...))
}

// composePrompt flattens request parts into a prompt and system prompt.
func composePrompt(req TextRequest) (prompt, system string, err error) {
	var sections []string
	for i, p := range req.Parts {
		switch p.Kind {
		case PartText:
			if p.Text != "" {
				sections = append(sections, p.Text)
			}
		case PartInline:
			if !isTextualMIME(p.MIMEType) {
				return "", "", fmt.Errorf("part %d: gollm text generation cannot carry %s content", i, p.MIMEType)
			}
			sections = append(sections, fmt.Sprintf("<document type=%q>\n%s\n</document>", p.MIMEType, p.Data))
		case PartFile:
			return "", "", fmt.Errorf("part %d: gollm text generation cannot reference uploaded file %s", i, p.FileURI)
		default:
			return "", "", fmt.Errorf("part %d: unknown part kind %q", i, p.Kind)
		}
	}
	if len(sections) == 0 {
		return "", "", fmt.Errorf("empty prompt")
	}
	if req.JSONOutput {
		system = jsonSystemPrompt
	}
	return strings.Join(sections, "\n\n"), system, nil
}

func isTextualMIME(m string) bool {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	m = strings.TrimSpace(strings.ToLower(m))
	if strings.HasPrefix(m, "text/") {
		return true
	}
	switch m {
	case "application/json", "application/xml", "application/yaml", "application/x-yaml":
		return true
	}
	return false
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/martinemde/mmio/mediaio"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "mmio",
		Short:         "Multimodal media analysis and generation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging")
	root.PersistentFlags().StringVar(&a.textProvider, "text-provider", "", "Route text operations through a gollm provider (openai, anthropic, ...)")

	root.AddCommand(
		newProcessCmd(a),
		newImagineCmd(a),
		newVideoCmd(a),
		newTranscribeCmd(a),
		newConvertCmd(a),
	)
	return root
}

func newProcessCmd(a *app) *cobra.Command {
	var (
		prompt, model, output string
		jsonOut               bool
	)
	cmd := &cobra.Command{
		Use:   "process <file|url>",
		Short: "Process media with a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Analyze(cmd.Context(), mediaio.FromString(args[0]), prompt, mediaio.AnalyzeOptions{
				Model:      model,
				JSONOutput: jsonOut,
			})
			if err != nil {
				return err
			}
			return a.emitText(res.Text, output)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Processing prompt")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model override")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Request JSON output")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Save result to file")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func newImagineCmd(a *app) *cobra.Command {
	var (
		model, ratio, size, output, ref string
		count                           int
	)
	cmd := &cobra.Command{
		Use:   "imagine <prompt>",
		Short: "Generate an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := mediaio.ImageOptions{Model: model, AspectRatio: ratio, Size: size, Count: count}
			if ref != "" {
				src := mediaio.FromString(ref)
				opts.Reference = &src
			}
			art, err := a.client.GenerateImage(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("generated_%d%s", time.Now().Unix(), artifactExt(art, ".png"))
			}
			return a.saveArtifact(art, output)
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model override")
	cmd.Flags().StringVarP(&ratio, "ratio", "r", "1:1", "Aspect ratio")
	cmd.Flags().StringVarP(&size, "size", "s", "1K", "Image size (models that support it)")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Images to request from batch models")
	cmd.Flags().StringVar(&ref, "reference", "", "Reference image for inline models")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	return cmd
}

func newVideoCmd(a *app) *cobra.Command {
	var model, resolution, ratio, output, start, end string
	cmd := &cobra.Command{
		Use:   "video <prompt>",
		Short: "Generate a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := mediaio.VideoOptions{Model: model, Resolution: resolution, AspectRatio: ratio}
			if start != "" {
				src := mediaio.FromPath(start)
				opts.StartFrame = &src
			}
			if end != "" {
				src := mediaio.FromPath(end)
				opts.EndFrame = &src
			}
			art, err := a.client.GenerateVideo(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(a.cfg.OutputDir, fmt.Sprintf("video_%d.mp4", time.Now().Unix()))
			}
			return a.saveArtifact(art, output)
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model override")
	cmd.Flags().StringVar(&resolution, "resolution", "1080p", "Resolution")
	cmd.Flags().StringVarP(&ratio, "ratio", "r", "16:9", "Aspect ratio")
	cmd.Flags().StringVar(&start, "start-frame", "", "Image to start from")
	cmd.Flags().StringVar(&end, "end-frame", "", "Image to end on")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	return cmd
}

func newTranscribeCmd(a *app) *cobra.Command {
	var (
		opts   mediaio.TranscribeOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "transcribe <file|url>",
		Short: "Transcribe audio or video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Transcribe(cmd.Context(), mediaio.FromString(args[0]), opts)
			if err != nil {
				return err
			}
			return a.emitText(res.Text, output)
		},
	}
	cmd.Flags().BoolVarP(&opts.Timestamps, "timestamps", "t", false, "Include timestamps")
	cmd.Flags().BoolVar(&opts.Speakers, "speakers", false, "Identify speakers")
	cmd.Flags().StringVarP(&opts.Language, "language", "l", "", "Transcript language")
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "Model override")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	var format, model, output string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a document to markdown, json or text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch mediaio.DocumentFormat(format) {
			case mediaio.FormatMarkdown, mediaio.FormatJSON, mediaio.FormatText:
			default:
				return fmt.Errorf("invalid format %q (choose markdown, json or text)", format)
			}
			res, err := a.client.ConvertDocument(cmd.Context(), mediaio.FromPath(args[0]), mediaio.DocumentFormat(format), model)
			if err != nil {
				return err
			}
			return a.emitText(res.Text, output)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(mediaio.FormatMarkdown), "Output format: markdown, json, text")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model override")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	return cmd
}

// emitText prints text, or writes it to path and reports the path.
func (a *app) emitText(text, path string) error {
	if path == "" {
		_, err := fmt.Fprintln(a.stdout, text)
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, err := fmt.Fprintf(a.stdout, "Saved: %s\n", path)
	return err
}

func (a *app) saveArtifact(art *mediaio.GeneratedArtifact, path string) error {
	saved, err := art.Save(path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Saved: %s\n", saved)
	return err
}

// artifactExt picks a file extension from the artifact's mime type.
func artifactExt(art *mediaio.GeneratedArtifact, fallback string) string {
	if art.MIMEType != "" {
		if mt := mimetype.Lookup(art.MIMEType); mt != nil && mt.Extension() != "" {
			return mt.Extension()
		}
	}
	return fallback
}

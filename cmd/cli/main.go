// Package main provides the CLI tool for the collage generator.
// Uses Cobra for command parsing — Cobra is the standard Go CLI framework
// (used by kubectl, docker, hugo, and many others).
//
// Run with: go run ./cmd/cli prompt --call-name Rex --style silhouette
package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Chrojoh/dog-collage-generator/internal/catalog"
	"github.com/Chrojoh/dog-collage-generator/internal/composer"
	"github.com/Chrojoh/dog-collage-generator/internal/config"
	"github.com/Chrojoh/dog-collage-generator/internal/export"
	"github.com/Chrojoh/dog-collage-generator/internal/genclient"
	"github.com/Chrojoh/dog-collage-generator/internal/generation"
	"github.com/Chrojoh/dog-collage-generator/internal/ingest"
	"github.com/Chrojoh/dog-collage-generator/internal/model"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// formFlags holds the shared form inputs for both commands.
type formFlags struct {
	callName       string
	registeredName string
	preTitles      string
	postTitles     string
	breeder        string
	owner          string
	stats          []string
	styleIDs       []string
	sizeID         string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.callName, "call-name", "", "Dog's call name")
	cmd.Flags().StringVar(&f.registeredName, "registered-name", "", "Dog's registered name")
	cmd.Flags().StringVar(&f.preTitles, "pre-titles", "", "Titles shown before the registered name")
	cmd.Flags().StringVar(&f.postTitles, "post-titles", "", "Titles shown after the registered name")
	cmd.Flags().StringVar(&f.breeder, "breeder", "", "Breeder name")
	cmd.Flags().StringVar(&f.owner, "owner", "", "Owner name")
	cmd.Flags().StringArrayVar(&f.stats, "stat", nil, "Statistic as Label=Value (repeatable)")
	cmd.Flags().StringArrayVar(&f.styleIDs, "style", catalog.DefaultStyleIDs(), "Style tag ID (repeatable)")
	cmd.Flags().StringVar(&f.sizeID, "size", catalog.DefaultSizeID(), "Size tag ID")
}

// resolve turns the raw flags into the composer inputs, validating tag IDs
// against the catalog.
func (f *formFlags) resolve() (composer.Form, []catalog.StyleTag, catalog.SizeTag, error) {
	form := composer.Form{
		CallName:       f.callName,
		RegisteredName: f.registeredName,
		PreTitles:      f.preTitles,
		PostTitles:     f.postTitles,
		Breeder:        f.breeder,
		Owner:          f.owner,
	}
	for _, raw := range f.stats {
		label, value, ok := strings.Cut(raw, "=")
		if !ok {
			return form, nil, catalog.SizeTag{}, fmt.Errorf("invalid --stat %q: expected Label=Value", raw)
		}
		form.Stats = append(form.Stats, model.StatEntry{Label: label, Value: value})
	}

	var styles []catalog.StyleTag
	for _, id := range f.styleIDs {
		style, ok := catalog.StyleByID(id)
		if !ok {
			return form, nil, catalog.SizeTag{}, fmt.Errorf("unknown style: %s", id)
		}
		styles = append(styles, style)
	}

	size, ok := catalog.SizeByID(f.sizeID)
	if !ok {
		return form, nil, catalog.SizeTag{}, fmt.Errorf("unknown size: %s", f.sizeID)
	}

	return form, styles, size, nil
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "collage-cli",
		Short: "Dog collage generator CLI tools",
	}

	root.AddCommand(promptCmd())
	root.AddCommand(generateCmd())
	return root
}

// promptCmd prints the composed prompt without contacting any provider.
// Useful for inspecting exactly what a given form produces.
func promptCmd() *cobra.Command {
	var flags formFlags

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the generation prompt for the given form inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, styles, size, err := flags.resolve()
			if err != nil {
				return err
			}
			fmt.Println(composer.Compose(form, styles, size))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func generateCmd() *cobra.Command {
	var flags formFlags
	var imagePaths []string
	var outPath string
	var serverURL string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a collage from local images and save it as JPEG",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(flags, imagePaths, outPath, serverURL)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&imagePaths, "image", nil, "Path to a source image (repeatable, required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (default: derived from the call name)")
	cmd.Flags().StringVar(&serverURL, "server", "", "Base URL of a running server to proxy through (default: call the provider directly)")
	return cmd
}

func runGenerate(flags formFlags, imagePaths []string, outPath, serverURL string) error {
	if len(imagePaths) == 0 {
		return fmt.Errorf("at least one --image is required")
	}

	form, styles, size, err := flags.resolve()
	if err != nil {
		return err
	}

	// Set up logger (always use development mode for CLI)
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	configPath := os.Getenv("COLLAGE_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Normalize the local files the same way the server would.
	ingestor := ingest.New(cfg.Ingest.MaxDimension, cfg.Ingest.JPEGQuality, logger)
	images := make([]generation.ImagePart, 0, len(imagePaths))
	for _, path := range imagePaths {
		asset, err := ingestFile(ingestor, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		images = append(images, generation.ImagePart{
			MimeType: asset.MimeType,
			Data:     asset.Base64(),
		})
	}

	prompt := composer.Compose(form, styles, size)

	// Ctrl+C cancels the in-flight generation call.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("cancelling generation...")
		cancel()
	}()

	var dataURI string
	if serverURL != "" {
		client := genclient.New(serverURL)
		dataURI, err = client.Generate(ctx, prompt, images)
	} else {
		generator := generation.NewGeminiGenerator(cfg.Gemini, logger)
		var result *generation.CollageImage
		result, err = generator.GenerateCollage(ctx, prompt, images)
		if err == nil {
			dataURI = result.DataURI()
		}
	}
	if err != nil {
		return err
	}

	jpeg, err := export.ToJPEG(dataURI)
	if err != nil {
		return fmt.Errorf("rendering result: %w", err)
	}

	if outPath == "" {
		outPath = export.FileName(form.CallName)
	}
	if err := os.WriteFile(outPath, jpeg, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logger.Info("collage saved", zap.String("path", outPath), zap.Int("bytes", len(jpeg)))
	return nil
}

func ingestFile(ingestor *ingest.Ingestor, path string) (*model.ImageAsset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return ingestor.File(filepath.Base(path), contentType, f)
}

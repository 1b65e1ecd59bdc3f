package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/knotic/internal/ingestion"
	"github.com/jonathan/knotic/internal/observability"
	"github.com/jonathan/knotic/internal/parsing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	normalizeOutput  string
	normalizeVerbose bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <resume.pdf>",
	Short: "Extract and structure a résumé PDF",
	Long:  "Extract text from a résumé PDF and structure it into StructuredResume JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	normalizeCmd.Flags().BoolVarP(&normalizeVerbose, "verbose", "v", false, "Print a summary to stderr")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	if len(data) > ingestion.MaxDocumentBytes {
		return ingestion.ErrTooLarge
	}

	extractor, err := ingestion.NewExtractor(cfg.PDF.Engine)
	if err != nil {
		return err
	}
	text, err := ingestion.ExtractText(cmd.Context(), extractor, data)
	if err != nil {
		return err
	}
	logger.Debug("extracted text",
		zap.String("file", filepath.Base(args[0])),
		zap.Int("length", len(text)),
	)

	client, err := newCLIDelegate(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	resume, err := parsing.NewNormalizer(client, logger).Normalize(cmd.Context(), text)
	if err != nil {
		return err
	}

	if normalizeVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintStructuredResume(resume)
	}
	return writeJSON(cmd.OutOrStdout(), normalizeOutput, resume)
}

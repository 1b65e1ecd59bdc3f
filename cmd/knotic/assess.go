package main

import (
	"github.com/jonathan/knotic/internal/observability"
	"github.com/jonathan/knotic/internal/scoring"
	"github.com/spf13/cobra"
)

var (
	assessResume  string
	assessOutput  string
	assessVerbose bool
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Rate a structured résumé's general ATS readiness",
	Args:  cobra.NoArgs,
	RunE:  runAssess,
}

func init() {
	assessCmd.Flags().StringVarP(&assessResume, "resume", "r", "", "Path to StructuredResume JSON (from `knotic normalize`)")
	assessCmd.Flags().StringVarP(&assessOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	assessCmd.Flags().BoolVarP(&assessVerbose, "verbose", "v", false, "Print a summary to stderr")
	_ = assessCmd.MarkFlagRequired("resume")
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	resume, err := readStructuredResume(assessResume)
	if err != nil {
		return err
	}

	client, err := newCLIDelegate(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	report, err := scoring.NewReadinessAssessor(client, logger).Assess(cmd.Context(), resume)
	if err != nil {
		return err
	}

	if assessVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintReadinessReport(report)
	}
	return writeJSON(cmd.OutOrStdout(), assessOutput, report)
}

package main

import (
	"fmt"
	"os"

	"github.com/jonathan/knotic/internal/observability"
	"github.com/jonathan/knotic/internal/scoring"
	"github.com/spf13/cobra"
)

var (
	matchResume  string
	matchJob     string
	matchOutput  string
	matchVerbose bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a structured résumé against a job description",
	Long:  "Score a StructuredResume JSON file against a plain-text job description and print the MatchReport JSON.",
	Args:  cobra.NoArgs,
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchResume, "resume", "r", "", "Path to StructuredResume JSON (from `knotic normalize`)")
	matchCmd.Flags().StringVar(&matchJob, "job", "", "Path to job description text file")
	matchCmd.Flags().StringVarP(&matchOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	matchCmd.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print a summary to stderr")
	_ = matchCmd.MarkFlagRequired("resume")
	_ = matchCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	resume, err := readStructuredResume(matchResume)
	if err != nil {
		return err
	}
	jd, err := os.ReadFile(matchJob)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	client, err := newCLIDelegate(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	report, err := scoring.NewMatcher(client, logger).Match(cmd.Context(), resume, string(jd))
	if err != nil {
		return err
	}

	if matchVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintMatchReport(report)
	}
	return writeJSON(cmd.OutOrStdout(), matchOutput, report)
}

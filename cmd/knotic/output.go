package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/knotic/internal/config"
	"github.com/jonathan/knotic/internal/llm"
	"github.com/jonathan/knotic/internal/types"
	"go.uber.org/zap"
)

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// readStructuredResume loads a résumé previously produced by `knotic normalize`.
func readStructuredResume(path string) (*types.StructuredResume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read résumé file: %w", err)
	}
	var resume types.StructuredResume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, fmt.Errorf("failed to parse résumé file %s: %w", path, err)
	}
	return &resume, nil
}

// newCLIDelegate builds the LLM client for one-shot commands, where a
// missing API key is an error.
func newCLIDelegate(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	llmConfig, err := cfg.LLMClientConfig()
	if err != nil {
		return nil, err
	}
	logger.Debug("creating delegate client", zap.String("llm_provider", string(llmConfig.Provider)))
	return llm.NewClient(ctx, llmConfig, cfg.LLM.APIKey)
}

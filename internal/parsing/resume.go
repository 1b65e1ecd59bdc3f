// Package parsing turns raw résumé text into a StructuredResume through the
// structuring delegate, validating and repairing what comes back.
package parsing

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/knotic/internal/ingestion"
	"github.com/jonathan/knotic/internal/llm"
	"github.com/jonathan/knotic/internal/logging"
	"github.com/jonathan/knotic/internal/prompts"
	"github.com/jonathan/knotic/internal/schemas"
	"github.com/jonathan/knotic/internal/types"
	"go.uber.org/zap"
)

// Normalizer converts raw résumé text into the canonical record.
type Normalizer struct {
	client llm.Client
	logger *zap.Logger
	tier   llm.ModelTier
}

// NewNormalizer creates a Normalizer. A nil client is allowed; Normalize then
// reports a configuration error.
func NewNormalizer(client llm.Client, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		client: client,
		logger: logging.OrNop(logger),
		tier:   llm.TierStandard,
	}
}

// Normalize makes exactly one delegate call and never retries.
func (n *Normalizer) Normalize(ctx context.Context, rawText string) (*types.StructuredResume, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, ingestion.ErrScannedOrEmpty
	}
	if n == nil || n.client == nil {
		return nil, &llm.ConfigurationError{Message: "no structuring delegate configured"}
	}

	prompt := prompts.Format(prompts.MustGet("normalize.json", "structure-resume"), map[string]string{
		"ResumeText": rawText,
	})

	logger := logging.WithDelegate(n.logger, "", n.client.GetModel(n.tier))
	logger.Debug("structuring request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logging.TruncateForLog(rawText, logging.PreviewLimit)),
	)

	raw, err := n.client.GenerateJSON(ctx, prompt, n.tier)
	if err != nil {
		var cfgErr *llm.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, cfgErr
		}
		return nil, upstreamError("structuring delegate call failed", err)
	}

	logger.Debug("structuring response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logging.TruncateForLog(raw, logging.PreviewLimit)),
	)

	resume, err := parseResumeResponse(raw)
	if err != nil {
		logger.Warn("structuring response rejected", zap.Error(err))
		return nil, err
	}
	return resume, nil
}

// parseResumeResponse decodes, validates and repairs a delegate answer.
func parseResumeResponse(raw string) (*types.StructuredResume, error) {
	doc, err := llm.DecodeObject(raw)
	if err != nil {
		return nil, parseError("response is not a JSON object", err)
	}
	if err := schemas.ValidateDocument(schemas.StructuredResume, doc); err != nil {
		return nil, parseError("response does not match the résumé schema", err)
	}
	return buildResume(doc), nil
}

// Package fetch - posting.go turns a job board URL into job description text.
package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/knotic/internal/fingerprint"
	"go.uber.org/zap"
)

// ErrNoContent is returned when a posting yields no description text.
var ErrNoContent = errors.New("no job description text found at URL")

// Posting is the description text imported from a job board page.
type Posting struct {
	URL       string    `json:"url"`
	Platform  Platform  `json:"platform"`
	Text      string    `json:"text"`
	Hash      string    `json:"hash"`
	Rendered  bool      `json:"rendered"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Importer fetches job postings, falling back to a headless browser for
// pages whose static HTML carries too little text.
type Importer struct {
	Options  *Options
	Renderer Renderer
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewImporter creates an Importer with default fetch options and a Chrome renderer.
func NewImporter(logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		Options:  DefaultOptions(),
		Renderer: &ChromeRenderer{Timeout: DefaultBrowserTimeout, Logger: logger},
		Logger:   logger,
		Now:      time.Now,
	}
}

// Import fetches urlStr and extracts the posting text. With useBrowser set,
// short extractions are retried against the browser-rendered page; a failed
// render keeps the HTTP result.
func (i *Importer) Import(ctx context.Context, urlStr string, useBrowser bool) (*Posting, error) {
	logger := i.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	platform := DetectPlatform(urlStr)
	logger.Debug("importing posting", zap.String("url", urlStr), zap.String("platform", string(platform)))

	result, err := URL(ctx, urlStr, i.Options)
	if err != nil {
		return nil, err
	}

	contentSelectors := PlatformContentSelectors(platform)
	noiseSelectors := PlatformNoiseSelectors(platform)

	text, err := ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}

	rendered := false
	if useBrowser && i.Renderer != nil && ShouldUseBrowser(text) {
		logger.Debug("content below threshold, rendering in browser",
			zap.Int("chars", len(text)), zap.Int("min", MinContentLength))

		html, renderErr := i.Renderer.Render(ctx, urlStr)
		switch {
		case renderErr != nil:
			logger.Warn("browser rendering failed, using HTTP content", zap.Error(renderErr))
		default:
			if browserText, extractErr := ExtractMainText(html, contentSelectors, noiseSelectors...); extractErr == nil && len(browserText) > len(text) {
				text = browserText
				rendered = true
			}
		}
	}

	if text == "" {
		return nil, ErrNoContent
	}

	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	return &Posting{
		URL:       urlStr,
		Platform:  platform,
		Text:      text,
		Hash:      fingerprint.Of(text),
		Rendered:  rendered,
		FetchedAt: now().UTC(),
	}, nil
}

package ingestion

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/logging"
)

// JobFetcher downloads a job posting and extracts its description.
type JobFetcher struct {
	Options *fetch.Options
	// UseBrowser enables a headless Chrome retry for pages whose plain HTML
	// holds too little text.
	UseBrowser     bool
	BrowserTimeout time.Duration
	Logger         *zap.Logger

	render func(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// NewJobFetcher returns a fetcher with default HTTP options.
func NewJobFetcher(useBrowser bool, logger *zap.Logger) *JobFetcher {
	return &JobFetcher{
		Options:        fetch.DefaultOptions(),
		UseBrowser:     useBrowser,
		BrowserTimeout: 30 * time.Second,
		Logger:         logging.OrNop(logger),
		render:         fetch.Render,
	}
}

// FetchJobText returns the cleaned description text of the posting at url.
func (f *JobFetcher) FetchJobText(ctx context.Context, url string) (string, error) {
	log := logging.OrNop(f.Logger).With(zap.String("url", url))
	platform := fetch.Detect(url)

	page, err := fetch.Get(ctx, url, f.Options)
	if err != nil {
		return "", err
	}

	text, err := fetch.ExtractText(page.HTML, platform.Content, platform.Noise)
	if err != nil {
		return "", err
	}
	log.Debug("extracted job text", zap.String("platform", platform.Name), zap.Int("chars", len(text)))

	if f.UseBrowser && f.render != nil && fetch.NeedsBrowser(text) {
		html, err := f.render(ctx, url, f.BrowserTimeout)
		if err != nil {
			log.Warn("browser rendering failed, keeping HTTP content", zap.Error(err))
		} else if rendered, err := fetch.ExtractText(html, platform.Content, platform.Noise); err == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	text = CleanText(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"mspro-labs/price-scout/internal/config"
)

// fetcher is the static strategy: one request/response round-trip.
type fetcher struct {
	client    *http.Client
	userAgent string
}

func newFetcher(cfg config.Scraping) *fetcher {
	return &fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

func (f *fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed for %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	return string(body), nil
}

// renderer is the rendered strategy for script-heavy stores: an isolated
// headless browser session per call, torn down on every exit path.
type renderer struct {
	timeout   time.Duration
	settle    time.Duration
	userAgent string
}

func newRenderer(cfg config.Scraping) *renderer {
	return &renderer{
		timeout:   cfg.Timeout,
		settle:    2 * time.Second,
		userAgent: cfg.UserAgent,
	}
}

// render launches a browser, navigates, waits for the page to go quiet
// plus a fixed settle delay, and returns the fully rendered markup.
func (r *renderer) render(targetURL string) (string, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	u, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.MustClose()

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("failed to open stealth page: %w", err)
	}
	defer page.MustClose()

	var html string
	err = rod.Try(func() {
		page = page.Timeout(r.timeout)
		page.MustSetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent})
		page.MustNavigate(targetURL)
		page.MustWaitStable()
		time.Sleep(r.settle)
		html = page.MustHTML()
	})
	if err != nil {
		return "", fmt.Errorf("render failed for %s: %w", targetURL, err)
	}
	return html, nil
}

package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"listings-pipeline/utils"
)

// BrowserFetcher renders each page in headless Chrome and returns the
// serialized DOM. Used when the plain HTTP response is a JS shell.
type BrowserFetcher struct {
	logger  *utils.Logger
	timeout time.Duration

	browserCtx    context.Context
	cancelBrowser context.CancelFunc
}

// NewBrowserFetcher launches the browser. Call Close when done.
func NewBrowserFetcher(chromeBin, userAgent string, logger *utils.Logger) (*BrowserFetcher, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}

	// first Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	return &BrowserFetcher{
		logger:        logger,
		timeout:       60 * time.Second,
		browserCtx:    browserCtx,
		cancelBrowser: cancel,
	}, nil
}

func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(url))
	if err != nil {
		return Page{}, fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if resp == nil {
		return Page{}, errors.New("browser: navigate " + url + ": no response")
	}

	page := Page{URL: url, StatusCode: int(resp.Status)}
	if !page.OK() {
		return page, nil
	}

	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &page.Body, chromedp.ByQuery)); err != nil {
		return Page{}, fmt.Errorf("browser: read dom %s: %w", url, err)
	}
	b.logger.Debug("[browser] %s rendered %d bytes", url, len(page.Body))
	return page, nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() error {
	b.cancelBrowser()
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

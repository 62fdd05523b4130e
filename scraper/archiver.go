package scraper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"listings-pipeline/config"
	"listings-pipeline/models"
	"listings-pipeline/storage"
	"listings-pipeline/utils"
)

// Archiver downloads the result pages of one search and stores them as a
// single dated markup artifact.
type Archiver struct {
	fetcher PageFetcher
	store   storage.ObjectStore
	logger  *utils.Logger

	baseURL string
	pages   int
	bucket  string

	// Now names the artifact; defaults to time.Now.
	Now func() time.Time
}

// NewArchiver creates an Archiver for the configured search.
func NewArchiver(cfg *config.Config, fetcher PageFetcher, store storage.ObjectStore, logger *utils.Logger) *Archiver {
	return &Archiver{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		baseURL: cfg.BaseURL,
		pages:   cfg.Pages,
		bucket:  cfg.ArchiveBucket,
		Now:     time.Now,
	}
}

// PageURL is the search URL for one page number.
func PageURL(baseURL string, page int) string {
	return baseURL + "&page=" + strconv.Itoa(page)
}

// Run fetches pages 1..N one after another. A failed page is logged and
// left out. Only a fetcher that cannot start aborts the run.
func (a *Archiver) Run(ctx context.Context) (models.Result, error) {
	a.logger.Info("[archiver] Starting download of %d pages into bucket %s", a.pages, a.bucket)

	var content strings.Builder
	downloaded := 0

	for page := 1; page <= a.pages; page++ {
		if err := ctx.Err(); err != nil {
			return models.Result{}, fmt.Errorf("archiver: page %d: %w", page, err)
		}

		url := PageURL(a.baseURL, page)
		p, err := a.fetcher.Fetch(ctx, url)
		if errors.Is(err, ErrFetcherUnavailable) {
			return models.Result{}, fmt.Errorf("archiver: %w", err)
		}
		if err != nil {
			a.logger.Error("[archiver] Error downloading page %d: %v", page, err)
			continue
		}
		if !p.OK() {
			a.logger.Error("[archiver] Error downloading page %d: %d", page, p.StatusCode)
			continue
		}

		content.WriteString(p.Body)
		content.WriteByte('\n')
		downloaded++
		a.logger.Debug("[archiver] Page %d done, %d bytes", page, len(p.Body))
	}

	key := storage.ArchiveKey(a.Now())
	if err := a.store.Put(ctx, a.bucket, key, []byte(content.String()), storage.ContentTypeHTML); err != nil {
		return models.Result{}, fmt.Errorf("archiver: upload %s: %w", key, err)
	}

	a.logger.Info("[archiver] File %s uploaded to bucket %s (%d/%d pages)", key, a.bucket, downloaded, a.pages)
	return models.Result{Status: models.StatusDownloaded, Filename: key}, nil
}

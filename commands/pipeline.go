package commands

import (
	"context"
	"fmt"
	"io"

	"listings-pipeline/config"
	"listings-pipeline/dispatch"
	"listings-pipeline/scraper"
	"listings-pipeline/services"
	"listings-pipeline/storage"
	"listings-pipeline/utils"
)

// pipeline holds both stages wired against one store.
type pipeline struct {
	archiver   *scraper.Archiver
	processor  *services.Processor
	dispatcher *dispatch.Dispatcher

	closers []io.Closer
	logger  *utils.Logger
}

func newPipeline(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*pipeline, error) {
	p := &pipeline{logger: logger}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	if c, ok := fetcher.(io.Closer); ok {
		p.closers = append(p.closers, c)
	}

	var sink storage.RecordWriter
	if cfg.PostgresDSN != "" {
		pw, err := storage.NewPostgresWriter(ctx, cfg.PostgresDSN)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		sink = pw
		p.closers = append(p.closers, pw)
		logger.Info("[pipeline] Row sink enabled (table: listings)")
	}

	p.archiver = scraper.NewArchiver(cfg, fetcher, store, logger)
	p.processor = services.NewProcessor(cfg, store, sink, logger)
	p.dispatcher = dispatch.New(p.archiver, p.processor, logger)
	return p, nil
}

func newStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.StoreMode {
	case "s3", "":
		return storage.NewS3Store(ctx, cfg.AWSRegion)
	case "fs":
		return storage.NewFSStore(cfg.FSStoreRoot)
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_MODE %q", cfg.StoreMode)
	}
}

func newFetcher(cfg *config.Config, logger *utils.Logger) (scraper.PageFetcher, error) {
	switch cfg.FetchMode {
	case "http", "":
		return scraper.NewHTTPFetcher(cfg.UserAgent), nil
	case "browser":
		return scraper.NewLazyFetcher(func() (scraper.PageFetcher, error) {
			return scraper.NewBrowserFetcher(cfg.ChromeBin, cfg.UserAgent, logger)
		}), nil
	default:
		return nil, fmt.Errorf("unknown FETCH_MODE %q", cfg.FetchMode)
	}
}

func (p *pipeline) Close() {
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			p.logger.Warn("[pipeline] close: %v", err)
		}
	}
}

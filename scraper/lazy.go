package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrFetcherUnavailable wraps a failure to start the underlying fetcher.
var ErrFetcherUnavailable = errors.New("fetcher unavailable")

// LazyFetcher builds its fetcher on the first Fetch, at most once.
type LazyFetcher struct {
	build func() (PageFetcher, error)

	once    sync.Once
	fetcher PageFetcher
	err     error
}

func NewLazyFetcher(build func() (PageFetcher, error)) *LazyFetcher {
	return &LazyFetcher{build: build}
}

func (l *LazyFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	l.once.Do(func() {
		f, err := l.build()
		if err != nil {
			l.err = fmt.Errorf("%w: %v", ErrFetcherUnavailable, err)
			return
		}
		l.fetcher = f
	})
	if l.err != nil {
		return Page{}, l.err
	}
	return l.fetcher.Fetch(ctx, url)
}

// Started reports whether the fetcher has been built.
func (l *LazyFetcher) Started() bool {
	return l.fetcher != nil
}

// Close closes the built fetcher, if any.
func (l *LazyFetcher) Close() error {
	if c, ok := l.fetcher.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"listings-pipeline/config"
	"listings-pipeline/dispatch"
	"listings-pipeline/models"
	"listings-pipeline/scraper"
	"listings-pipeline/storage"
	"listings-pipeline/utils"
)

type stubHandler struct {
	payload json.RawMessage
	res     models.Result
	err     error
}

func (s *stubHandler) Handle(_ context.Context, payload json.RawMessage) (models.Result, error) {
	s.payload = payload
	return s.res, s.err
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEventsEndpoint(t *testing.T) {
	h := &stubHandler{res: models.Result{Status: models.StatusDownloaded, Filename: "2024-03-04.html"}}
	rec := post(t, newRouter(h, utils.NewLogger()), `{"source":"aws.events"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"status":"downloaded","filename":"2024-03-04.html"}`, rec.Body.String())
	require.JSONEq(t, `{"source":"aws.events"}`, string(h.payload))
}

func TestEventsEndpointErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bucket \"\"", dispatch.ErrMalformedNotification), http.StatusBadRequest},
		{fmt.Errorf("processor: download: %w", storage.ErrNotFound), http.StatusNotFound},
		{errors.New("archiver: upload: access denied"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		h := &stubHandler{err: tc.err}
		var logs bytes.Buffer
		rec := post(t, newRouter(h, utils.NewLoggerTo(&logs, &logs)), `{}`)
		require.Equal(t, tc.want, rec.Code, tc.err.Error())

		var res models.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Equal(t, models.StatusError, res.Status)
	}
}

func TestEventsEndpointRejectsGet(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubHandler{}, utils.NewLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubHandler{}, utils.NewLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestReadEvent(t *testing.T) {
	raw, err := readEvent(nil, "")
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(raw))

	raw, err = readEvent(strings.NewReader(`{"Records":[]}`), "-")
	require.NoError(t, err)
	require.Equal(t, `{"Records":[]}`, string(raw))

	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))
	raw, err = readEvent(nil, path)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(raw))

	_, err = readEvent(nil, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestNewStoreModes(t *testing.T) {
	ctx := context.Background()

	s, err := newStore(ctx, &config.Config{StoreMode: "memory"})
	require.NoError(t, err)
	require.IsType(t, &storage.MemoryStore{}, s)

	s, err = newStore(ctx, &config.Config{StoreMode: "fs", FSStoreRoot: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &storage.FSStore{}, s)

	_, err = newStore(ctx, &config.Config{StoreMode: "ftp"})
	require.Error(t, err)
}

func TestNewFetcherModes(t *testing.T) {
	f, err := newFetcher(&config.Config{FetchMode: "http", UserAgent: config.DefaultUserAgent}, utils.NewLogger())
	require.NoError(t, err)
	require.IsType(t, &scraper.HTTPFetcher{}, f)

	// a browser is only started by the first download
	f, err = newFetcher(&config.Config{FetchMode: "browser", ChromeBin: "/nonexistent/chrome"}, utils.NewLogger())
	require.NoError(t, err)
	lazy, ok := f.(*scraper.LazyFetcher)
	require.True(t, ok, "got %T", f)
	require.False(t, lazy.Started())
	require.NoError(t, lazy.Close())

	_, err = newFetcher(&config.Config{FetchMode: "carrier-pigeon"}, utils.NewLogger())
	require.Error(t, err)
}

func TestPipelineEndToEndOnMemoryStore(t *testing.T) {
	page := `<html><body><div class="listing-card__content"><span class="price__actual">$ 1</span></div></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	c := &config.Config{
		ArchiveBucket: "parcials",
		TableBucket:   "parcials",
		BaseURL:       srv.URL + "/find?q=x",
		Pages:         2,
		UserAgent:     config.DefaultUserAgent,
		FetchMode:     "http",
		StoreMode:     "memory",
	}
	ctx := context.Background()
	p, err := newPipeline(ctx, c, utils.NewLogger())
	require.NoError(t, err)
	defer p.Close()

	res, err := p.dispatcher.Handle(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, models.StatusDownloaded, res.Status)

	archiveKey := res.Filename
	notification := fmt.Sprintf(`{"Records":[{"s3":{"bucket":{"name":"parcials"},"object":{"key":%q}}}]}`, archiveKey)
	res, err = p.dispatcher.Handle(ctx, json.RawMessage(notification))
	require.NoError(t, err)
	require.Equal(t, models.Result{Status: models.StatusProcessed, CSVFilename: storage.TableKey(archiveKey)}, res)
}

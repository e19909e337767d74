package remote

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"quiz-widget-service/internal/infra/file"
	"quiz-widget-service/internal/logger"
)

// Documents fetches catalog documents from a static host, for example
// https://example.com/quizzes/public/quizzes, laid out like the file catalog.
type Documents struct {
	baseURL string
	client  *http.Client
}

func NewDocuments(baseURL string, timeout time.Duration) *Documents {
	return &Documents{baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{Timeout: timeout}}
}

// ReadDocument maps 404 to fs.ErrNotExist so the catalog reports unknown quizzes.
func (d *Documents) ReadDocument(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/"+name, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", name, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// NewCatalog serves the catalog hosted at baseURL.
func NewCatalog(baseURL string, timeout time.Duration, log *logger.Logger) *file.Catalog {
	return file.NewReaderCatalog(NewDocuments(baseURL, timeout), log)
}

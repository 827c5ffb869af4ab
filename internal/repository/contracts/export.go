package contracts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
)

const (
	exportPageSize  = 500
	exportScrollTTL = time.Minute
)

// Export streams every document of the named index to w as JSON lines, one
// raw hit per line, using the engine's scroll API. The index defaults to the
// repository's own when empty.
func (r *Repository) Export(ctx context.Context, index string, w io.Writer) error {
	if index == "" {
		index = r.index
	}

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(index),
		r.es.Search.WithBody(strings.NewReader(`{"query":{"match_all":{}}}`)),
		r.es.Search.WithSize(exportPageSize),
		r.es.Search.WithScroll(exportScrollTTL),
	)
	if err != nil {
		return fmt.Errorf("export %s: %w: %w", index, err, domain.ErrSearchProviderError)
	}

	scrollID, n, err := r.writePage(res.Body, res.IsError(), res.Status(), index, w)
	res.Body.Close()
	if err != nil {
		return err
	}
	total := n

	for n > 0 {
		res, err := r.es.Scroll(
			r.es.Scroll.WithContext(ctx),
			r.es.Scroll.WithScrollID(scrollID),
			r.es.Scroll.WithScroll(exportScrollTTL),
		)
		if err != nil {
			return fmt.Errorf("export scroll %s: %w: %w", index, err, domain.ErrSearchProviderError)
		}

		scrollID, n, err = r.writePage(res.Body, res.IsError(), res.Status(), index, w)
		res.Body.Close()
		if err != nil {
			return err
		}
		total += n
	}

	r.clearScroll(ctx, scrollID)
	r.logger.Info("index export completed", zap.String("index", index), zap.Int("documents", total))
	return nil
}

// writePage decodes one scroll page and writes its hits as JSON lines.
// Returns the scroll cursor and the number of hits written.
func (r *Repository) writePage(body io.Reader, isErr bool, status, index string, w io.Writer) (string, int, error) {
	if isErr {
		return "", 0, fmt.Errorf("export %s: %s: %w", index, status, domain.ErrSearchProviderError)
	}

	var page scrollResponse
	if err := json.NewDecoder(body).Decode(&page); err != nil {
		return "", 0, fmt.Errorf("decode export page: %w: %w", err, domain.ErrSearchProviderError)
	}

	for _, h := range page.Hits.Hits {
		if _, err := w.Write(bytes.TrimSpace(h)); err != nil {
			return "", 0, fmt.Errorf("write export line: %w", err)
		}
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return "", 0, fmt.Errorf("write export line: %w", err)
		}
	}
	return page.ScrollID, len(page.Hits.Hits), nil
}

func (r *Repository) clearScroll(ctx context.Context, scrollID string) {
	if scrollID == "" {
		return
	}
	res, err := r.es.ClearScroll(
		r.es.ClearScroll.WithContext(ctx),
		r.es.ClearScroll.WithScrollID(scrollID),
	)
	if err != nil {
		r.logger.Warn("failed to clear scroll", zap.Error(err))
		return
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
}

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"bankdash/internal/log"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

const (
	DefaultIndex   = "bankdash-transactions"
	DefaultAddress = "http://localhost:9200"

	esFlushBytes = 2048
	esWorkers    = 4
	esMaxRetries = 5
)

// ElasticsearchV8 bulk-indexes documents, using the transaction id as the
// document id so repeated exports overwrite rather than duplicate.
type ElasticsearchV8 struct {
	addresses []string
	index     string
	logger    *log.Logger
}

func NewElasticsearchV8(logger *log.Logger, urls ...string) *ElasticsearchV8 {
	if len(urls) == 0 {
		urls = []string{DefaultAddress}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &ElasticsearchV8{
		addresses: urls,
		index:     DefaultIndex,
		logger:    logger.WithComponent(log.ComponentExport),
	}
}

// WithIndex overrides the target index.
func (e *ElasticsearchV8) WithIndex(index string) *ElasticsearchV8 {
	e.index = index
	return e
}

func (e *ElasticsearchV8) client() (*elasticsearch.Client, error) {
	retryBackoff := backoff.NewExponentialBackOff()
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: e.addresses,

		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: esMaxRetries,
	})
}

func (e *ElasticsearchV8) Write(ctx context.Context, docs []Document) error {
	es, err := e.client()
	if err != nil {
		return fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := es.Indices.Create(e.index, es.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", e.index, err)
	}
	res.Body.Close()
	// an existing index answers 400
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("create index %s: %s", e.index, res.Status())
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.index,
		Client:        es,
		NumWorkers:    esWorkers,
		FlushBytes:    esFlushBytes,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("bulk indexer: %w", err)
	}

	var failures atomic.Int64
	for _, d := range docs {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", d.ID, err)
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: d.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failures.Add(1)
				if err != nil {
					e.logger.ErrorContext(ctx, "Failed to index document", "document_id", item.DocumentID, log.FieldError, err)
					return
				}
				e.logger.ErrorContext(ctx, "Failed to index document", "document_id", item.DocumentID,
					"error_type", res.Error.Type, "reason", res.Error.Reason)
			},
		})
		if err != nil {
			return fmt.Errorf("queue document %s: %w", d.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("flush bulk indexer: %w", err)
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 || failures.Load() > 0 {
		return fmt.Errorf("failed indexing %d of %d documents", stats.NumFailed, len(docs))
	}
	e.logger.InfoContext(ctx, "Documents indexed",
		"index", e.index, "indexed", stats.NumIndexed, "flushed", stats.NumFlushed)
	return nil
}

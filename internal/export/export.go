// Package export writes statement transactions to an external sink: a JSON
// file or an Elasticsearch index.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bankdash/internal/core"
	"bankdash/internal/dashboard"
	"bankdash/internal/log"
)

// Sink receives exported documents.
type Sink interface {
	Write(ctx context.Context, docs []Document) error
}

// Document is one exported transaction.
type Document struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Month       string    `json:"month,omitempty"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Magnitude   float64   `json:"magnitude"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	Source      string    `json:"source"`
	Version     uint64    `json:"snapshot_version"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Documents flattens a snapshot's transactions for export.
func Documents(snap *dashboard.Snapshot, at time.Time) []Document {
	docs := make([]Document, 0, len(snap.Transactions))
	for _, t := range snap.Transactions {
		doc := Document{
			ID:          t.ID,
			Date:        t.Date,
			Description: t.Description,
			Amount:      t.Amount.Round(2).InexactFloat64(),
			Magnitude:   t.Magnitude().Round(2).InexactFloat64(),
			Category:    t.Category,
			Type:        string(t.Type),
			Source:      snap.Source,
			Version:     snap.Version,
			ExportedAt:  at.UTC(),
		}
		if day, err := t.Day(); err == nil {
			doc.Month = core.MonthOf(day).String()
		}
		docs = append(docs, doc)
	}
	return docs
}

// Open parses a target of the form "jsonfile:/path/file.json" or
// "es8:http://host:9200[,http://other:9200]".
func Open(target string, logger *log.Logger) (Sink, error) {
	kind, rest, ok := strings.Cut(target, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("invalid export target %q: want jsonfile:<path> or es8:<url>", target)
	}
	switch kind {
	case "jsonfile":
		return NewJSONFile(rest), nil
	case "es8":
		var urls []string
		for _, u := range strings.Split(rest, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		return NewElasticsearchV8(logger, urls...), nil
	}
	return nil, fmt.Errorf("unknown export target kind %q", kind)
}

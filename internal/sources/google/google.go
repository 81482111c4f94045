package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"bankdash/internal/core"
	"bankdash/internal/log"
	"bankdash/internal/sources"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const sourceName = "sheets"

// Default ranges read from the spreadsheet.
const (
	DefaultTransactionsRange = "Transactions!A:F"
	DefaultSummaryRange      = "Summary!A:B"
)

var _ sources.Supplier = (*Client)(nil)

// Config selects the spreadsheet and the credentials used to read it.
type Config struct {
	SpreadsheetID     string
	TransactionsRange string
	SummaryRange      string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsRange string
	summaryRange      string
	logger            *log.Logger
}

// New creates a Sheets client using service account credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test server.
func NewWithService(svc *gsheet.Service, cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	c := &Client{
		svc:               svc,
		spreadsheetID:     strings.TrimSpace(cfg.SpreadsheetID),
		transactionsRange: cfg.TransactionsRange,
		summaryRange:      cfg.SummaryRange,
		logger:            logger.WithComponent(log.ComponentSources),
	}
	if c.transactionsRange == "" {
		c.transactionsRange = DefaultTransactionsRange
	}
	if c.summaryRange == "" {
		c.summaryRange = DefaultSummaryRange
	}
	return c
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

func (c *Client) Name() string { return sourceName }

func (c *Client) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	values, err := c.get(ctx, c.transactionsRange)
	if err != nil {
		return nil, &core.FetchError{Source: sourceName, Op: "transactions", Err: err}
	}
	txs, skipped, err := parseTransactions(values)
	if err != nil {
		return nil, &core.FetchError{Source: sourceName, Op: "transactions", Err: err}
	}
	if skipped > 0 {
		c.logger.WarnContext(ctx, "Skipped blank rows in transactions sheet", "range", c.transactionsRange, "rows", skipped)
	}
	return txs, nil
}

func (c *Client) FetchSummary(ctx context.Context) (core.FinancialSummary, error) {
	values, err := c.get(ctx, c.summaryRange)
	if err != nil {
		return core.FinancialSummary{}, &core.FetchError{Source: sourceName, Op: "summary", Err: err}
	}
	sum, err := parseSummary(values)
	if err != nil {
		return core.FinancialSummary{}, &core.FetchError{Source: sourceName, Op: "summary", Err: err}
	}
	return sum, nil
}

func (c *Client) get(ctx context.Context, rng string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

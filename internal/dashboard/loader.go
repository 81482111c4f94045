package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bankdash/internal/aggregate"
	"bankdash/internal/core"
	"bankdash/internal/log"
	"bankdash/internal/sources"

	"golang.org/x/sync/errgroup"
)

// Join runs fa and fb concurrently and waits for both. The first error
// cancels the context shared by the two calls and is returned.
func Join[A, B any](ctx context.Context, fa func(context.Context) (A, error), fb func(context.Context) (B, error)) (A, B, error) {
	var (
		a A
		b B
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := fa(gctx)
		if err != nil {
			return err
		}
		a = v
		return nil
	})
	g.Go(func() error {
		v, err := fb(gctx)
		if err != nil {
			return err
		}
		b = v
		return nil
	})
	if err := g.Wait(); err != nil {
		var za A
		var zb B
		return za, zb, err
	}
	return a, b, nil
}

// Status describes the most recent load attempt.
type Status struct {
	Loading     bool
	Err         error
	LastAttempt time.Time
	LastSuccess time.Time
}

// Message is the single user-facing description of a failed load.
func (s Status) Message() string {
	if s.Err == nil {
		return ""
	}
	return UserMessage(s.Err)
}

// UserMessage maps a load error to the text shown in the UI.
func UserMessage(err error) string {
	var fe *core.FetchError
	if errors.As(err, &fe) {
		switch fe.Op {
		case "transactions":
			return "Failed to fetch transactions"
		case "summary":
			return "Failed to fetch summary"
		}
	}
	return "Failed to fetch data"
}

// Loader pulls a statement from a supplier into a Store.
type Loader struct {
	supplier sources.Supplier
	store    *Store
	opts     aggregate.Options
	logger   *log.Logger
	now      func() time.Time

	// serializes loads so a slow load cannot overwrite a newer one
	loadMu sync.Mutex

	mu     sync.RWMutex
	status Status
}

func NewLoader(supplier sources.Supplier, store *Store, opts aggregate.Options, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{
		supplier: supplier,
		store:    store,
		opts:     opts,
		logger:   logger.WithComponent(log.ComponentDashboard),
		now:      time.Now,
	}
}

// Store returns the store the loader publishes into.
func (l *Loader) Store() *Store { return l.store }

// Status returns the state of the most recent load.
func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Load fetches transactions and summary in parallel, validates and
// aggregates them, then publishes a new snapshot. On any failure the
// previous snapshot stays current and the error is kept in Status.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	l.setStatus(func(s *Status) {
		s.Loading = true
		s.LastAttempt = l.now()
	})

	snap, err := l.load(ctx)

	l.setStatus(func(s *Status) {
		s.Loading = false
		s.Err = err
		if err == nil {
			s.LastSuccess = snap.LoadedAt
		}
	})
	if err != nil {
		log.NewStructuredLogger(l.logger).LogError(ctx, "Dashboard load failed", err,
			log.ComponentDashboard, log.OpLoad, log.NewFields())
		return nil, err
	}
	log.NewStructuredLogger(l.logger).LogSnapshotLoaded(ctx, snap.Source, snap.Version,
		len(snap.Transactions), len(snap.Report.Categories), len(snap.Report.Monthly))
	return snap, nil
}

func (l *Loader) load(ctx context.Context) (*Snapshot, error) {
	txs, supplied, err := Join(ctx, l.supplier.FetchTransactions, l.supplier.FetchSummary)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateAll(txs); err != nil {
		return nil, fmt.Errorf("%s supplied an invalid statement: %w", l.supplier.Name(), err)
	}
	report, err := aggregate.Build(txs, l.opts)
	if err != nil {
		return nil, fmt.Errorf("aggregate statement: %w", err)
	}
	if !supplied.Equal(report.Summary) {
		l.logger.WarnContext(ctx, "Supplied summary differs from derived totals",
			log.FieldSource, l.supplier.Name(),
			"supplied_net", supplied.NetBalance.String(),
			"derived_net", report.Summary.NetBalance.String(),
			"supplied_count", supplied.TransactionCount,
			"derived_count", report.Summary.TransactionCount)
	}
	return l.store.Publish(&Snapshot{
		Source:       l.supplier.Name(),
		LoadedAt:     l.now(),
		Transactions: txs,
		Supplied:     supplied,
		Report:       report,
	}), nil
}

func (l *Loader) setStatus(fn func(*Status)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.status)
}

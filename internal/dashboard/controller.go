package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/vendascope/vendascope/internal/salesapi"
)

// Phase is the list view state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// LookupPhase is the single-record lookup sub-state.
type LookupPhase string

const (
	LookupEmpty     LookupPhase = "empty"
	LookupSearching LookupPhase = "searching"
	LookupFound     LookupPhase = "found"
	LookupNotFound  LookupPhase = "not_found"
	LookupFailed    LookupPhase = "failed"
)

// ErrorInfo is the human-readable failure stored on a failed fetch.
type ErrorInfo struct {
	Kind    salesapi.Kind `json:"kind"`
	Message string        `json:"message"`
}

func describeError(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	return &ErrorInfo{Kind: salesapi.KindOf(err), Message: err.Error()}
}

// Fetcher is the data dependency of the controller, satisfied by *Service.
type Fetcher interface {
	Overview(ctx context.Context, filter salesapi.Filter) (Overview, error)
	Sale(ctx context.Context, id string) (*salesapi.SaleRecord, error)
}

// LookupSnapshot is the by-id section of a Snapshot.
type LookupSnapshot struct {
	Phase  LookupPhase          `json:"fase"`
	ID     string               `json:"id"`
	Record *salesapi.SaleRecord `json:"venda,omitempty"`
	Err    *ErrorInfo           `json:"erro,omitempty"`
}

// Snapshot is an immutable copy of the controller state, safe to render
// without holding the controller lock.
type Snapshot struct {
	Phase    Phase           `json:"fase"`
	Filter   salesapi.Filter `json:"-"`
	Overview Overview        `json:"resumo"`
	Err      *ErrorInfo      `json:"erro,omitempty"`
	Lookup   LookupSnapshot  `json:"consulta"`
}

// Controller owns the dashboard view state. Every refresh is tagged with a
// monotonically increasing token; a fetch whose token is no longer the latest
// when it completes is discarded instead of overwriting newer state, so the
// visible state always reflects the most recently requested filter.
type Controller struct {
	mu     sync.Mutex
	svc    Fetcher
	logger *slog.Logger

	observeStale func(view string)

	phase    Phase
	filter   salesapi.Filter
	overview Overview
	err      *ErrorInfo
	seq      uint64

	lookupPhase  LookupPhase
	lookupID     string
	lookupRecord *salesapi.SaleRecord
	lookupErr    *ErrorInfo
	lookupSeq    uint64
}

// ControllerOption customises controller construction.
type ControllerOption func(*Controller)

// WithStaleObserver is notified whenever a superseded fetch result is
// discarded; views are "list" and "lookup".
func WithStaleObserver(fn func(view string)) ControllerOption {
	return func(c *Controller) { c.observeStale = fn }
}

// NewController constructs an idle controller.
func NewController(svc Fetcher, logger *slog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		svc:         svc,
		logger:      logger,
		phase:       PhaseIdle,
		lookupPhase: LookupEmpty,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh loads the record set for the filter, transitioning
// Loading -> {Loaded, Failed}. Overlapping refreshes race freely; only the
// most recently issued one may apply its result.
func (c *Controller) Refresh(ctx context.Context, filter salesapi.Filter) Snapshot {
	c.mu.Lock()
	c.seq++
	token := c.seq
	c.phase = PhaseLoading
	c.filter = filter
	c.err = nil
	c.mu.Unlock()

	overview, err := c.svc.Overview(ctx, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.seq {
		c.discard("list", token)
		return c.snapshotLocked()
	}
	if err != nil {
		c.phase = PhaseFailed
		c.err = describeError(err)
		c.overview = Overview{}
		if c.logger != nil {
			c.logger.Error("refresh dashboard", slog.String("filter", filter.CacheKey()), slog.Any("error", err))
		}
		return c.snapshotLocked()
	}
	c.phase = PhaseLoaded
	c.overview = overview
	return c.snapshotLocked()
}

// Lookup resolves a single record by id, transitioning the lookup sub-state
// Searching -> {Found, NotFound, Failed}. A blank or whitespace-only id is
// inert: no transition, no transport call.
func (c *Controller) Lookup(ctx context.Context, id string) Snapshot {
	if strings.TrimSpace(id) == "" {
		return c.Snapshot()
	}

	c.mu.Lock()
	c.lookupSeq++
	token := c.lookupSeq
	c.lookupPhase = LookupSearching
	c.lookupID = strings.TrimSpace(id)
	c.lookupRecord = nil
	c.lookupErr = nil
	lookupID := c.lookupID
	c.mu.Unlock()

	record, err := c.svc.Sale(ctx, lookupID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.lookupSeq {
		c.discard("lookup", token)
		return c.snapshotLocked()
	}
	switch {
	case err != nil:
		c.lookupPhase = LookupFailed
		c.lookupErr = describeError(err)
		if c.logger != nil {
			c.logger.Error("lookup sale", slog.String("id", lookupID), slog.Any("error", err))
		}
	case record == nil:
		c.lookupPhase = LookupNotFound
	default:
		c.lookupPhase = LookupFound
		c.lookupRecord = record
	}
	return c.snapshotLocked()
}

// ClearLookup resets the by-id sub-state, the explicit user-visible reset
// when the identifier input changes.
func (c *Controller) ClearLookup() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookupSeq++
	c.lookupPhase = LookupEmpty
	c.lookupID = ""
	c.lookupRecord = nil
	c.lookupErr = nil
	return c.snapshotLocked()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:    c.phase,
		Filter:   c.filter,
		Overview: c.overview,
		Err:      c.err,
		Lookup: LookupSnapshot{
			Phase: c.lookupPhase,
			ID:    c.lookupID,
			Err:   c.lookupErr,
		},
	}
	if c.lookupRecord != nil {
		record := *c.lookupRecord
		snap.Lookup.Record = &record
	}
	return snap
}

func (c *Controller) discard(view string, token uint64) {
	if c.logger != nil {
		c.logger.Info("discarding superseded fetch", slog.String("view", view), slog.Uint64("token", token))
	}
	if c.observeStale != nil {
		c.observeStale(view)
	}
}

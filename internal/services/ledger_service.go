package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"moneyflow/internal/cache"
	"moneyflow/internal/chart"
	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
	applog "moneyflow/internal/log"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoAddTarget is returned when an add names no category while the
	// session view shows both.
	ErrNoAddTarget     = errors.New("no category selected: pick income or expense")
	ErrTooManySessions = errors.New("too many open sessions")
)

// Publisher forwards accepted transactions to the journal pipeline
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, entry core.JournalEntry) error
}

// AddRequest carries raw user input. A nil Category defers to the session view.
type AddRequest struct {
	Description string
	Amount      string
	Category    *core.Category
}

// Snapshot is everything a screen needs to render one session
type Snapshot struct {
	SessionID    string             `json:"session_id"`
	View         core.Filter        `json:"view"`
	Balance      decimal.Decimal    `json:"balance"`
	Totals       core.Totals        `json:"totals"`
	Transactions []core.Transaction `json:"transactions"`
	Chart        chart.ChartSeries  `json:"chart"`
	Revision     int                `json:"revision"`
}

type session struct {
	mu       sync.Mutex
	id       string
	ledger   *ledger.Ledger
	view     core.Filter
	lastSeen time.Time
}

// Options configures a LedgerService. Zero values pick defaults.
type Options struct {
	TTL            time.Duration
	MaxSessions    int
	Publisher      Publisher
	ChartCache     cache.Cache[chart.ChartSeries]
	Logger         *applog.Logger
	SessionIDs     ledger.IDGenerator
	TransactionIDs func() ledger.IDGenerator
	Now            func() time.Time
}

// LedgerService owns one ledger per client session and serialises access to
// each of them.
type LedgerService struct {
	mu       sync.RWMutex
	sessions map[string]*session

	ttl         time.Duration
	maxSessions int
	publisher   Publisher
	charts      cache.Cache[chart.ChartSeries]
	logger      *applog.Logger
	events      *applog.StructuredLogger
	sessionIDs  ledger.IDGenerator
	txIDs       func() ledger.IDGenerator
	now         func() time.Time

	stopJanitor chan struct{}
	janitorDone chan struct{}
	closeOnce   sync.Once
}

func NewLedgerService(opts Options) *LedgerService {
	s := &LedgerService{
		sessions:    make(map[string]*session),
		ttl:         opts.TTL,
		maxSessions: opts.MaxSessions,
		publisher:   opts.Publisher,
		charts:      opts.ChartCache,
		logger:      opts.Logger,
		sessionIDs:  opts.SessionIDs,
		txIDs:       opts.TransactionIDs,
		now:         opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = 30 * time.Minute
	}
	if s.maxSessions <= 0 {
		s.maxSessions = 1000
	}
	if s.logger == nil {
		s.logger = applog.New(applog.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(applog.ComponentSession)
	s.events = applog.NewStructuredLogger(s.logger)
	if s.sessionIDs == nil {
		s.sessionIDs = ledger.UUIDGenerator{}
	}
	if s.txIDs == nil {
		s.txIDs = func() ledger.IDGenerator { return ledger.UUIDGenerator{} }
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateSession opens a new empty ledger with view All.
func (s *LedgerService) CreateSession(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		return "", ErrTooManySessions
	}

	id := s.sessionIDs.NewID()
	s.sessions[id] = &session{
		id:       id,
		ledger:   ledger.New(ledger.WithIDGenerator(s.txIDs())),
		view:     core.All,
		lastSeen: s.now(),
	}
	s.logger.InfoContext(ctx, "Session created",
		applog.FieldSessionID, id,
		applog.FieldOperation, applog.OpCreate,
		"open_sessions", len(s.sessions))
	return id, nil
}

// EndSession discards the session and its ledger.
func (s *LedgerService) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.dropCharts(id)
	s.logger.InfoContext(ctx, "Session ended", applog.FieldSessionID, id, applog.FieldOperation, applog.OpDelete)
	return nil
}

// SetView changes the session's filter. It also picks the add target for
// requests that carry no category.
func (s *LedgerService) SetView(ctx context.Context, id string, f core.Filter) error {
	if _, err := f.MarshalText(); err != nil {
		return err
	}
	return s.with(id, func(sess *session) error {
		sess.view = f
		s.logger.DebugContext(ctx, "View changed", applog.FieldSessionID, id, applog.FieldFilter, f.String())
		return nil
	})
}

// Add records a transaction in the session's ledger and publishes it.
// A publish failure is logged and never fails the add: the ledger is the
// source of truth and the journal is best effort.
func (s *LedgerService) Add(ctx context.Context, id string, req AddRequest) (core.Transaction, error) {
	var (
		tx      core.Transaction
		balance decimal.Decimal
	)
	err := s.with(id, func(sess *session) error {
		category, err := addTarget(sess.view, req.Category)
		if err != nil {
			return err
		}
		tx, err = sess.ledger.Add(req.Description, req.Amount, category)
		if err != nil {
			return err
		}
		balance = sess.ledger.Balance()
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.events.LogRejected(ctx, id, err)
		}
		return core.Transaction{}, err
	}

	s.events.LogTransactionRecorded(ctx, id, tx, balance.String())
	s.publish(ctx, core.JournalEntry{
		SessionID:    id,
		Transaction:  tx,
		BalanceAfter: balance,
		RecordedAt:   s.now().UTC(),
	})
	return tx, nil
}

func addTarget(view core.Filter, explicit *core.Category) (core.Category, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if c, ok := view.Category(); ok {
		return c, nil
	}
	return 0, ErrNoAddTarget
}

func (s *LedgerService) publish(ctx context.Context, entry core.JournalEntry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionRecorded(ctx, entry); err != nil {
		s.events.LogError(ctx, "Failed to publish transaction", err,
			applog.ComponentSession, applog.OpPublish,
			applog.NewFields().WithSession(entry.SessionID).WithTransaction(entry.Transaction))
	}
}

// Transactions returns the session's transactions under f, independent of
// the session view.
func (s *LedgerService) Transactions(ctx context.Context, id string, f core.Filter) ([]core.Transaction, error) {
	var out []core.Transaction
	err := s.with(id, func(sess *session) error {
		out = sess.ledger.Filter(f)
		return nil
	})
	return out, err
}

func (s *LedgerService) Totals(ctx context.Context, id string) (core.Totals, error) {
	var totals core.Totals
	err := s.with(id, func(sess *session) error {
		totals = sess.ledger.Totals()
		return nil
	})
	return totals, err
}

// Chart returns the session's chart series and the revision it reflects.
func (s *LedgerService) Chart(ctx context.Context, id string) (chart.ChartSeries, int, error) {
	var (
		series   chart.ChartSeries
		revision int
	)
	err := s.with(id, func(sess *session) error {
		series, revision = s.chartLocked(sess)
		return nil
	})
	return series, revision, err
}

// Snapshot returns the view-filtered list with balance, totals and chart.
func (s *LedgerService) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	err := s.with(id, func(sess *session) error {
		snap = Snapshot{
			SessionID:    sess.id,
			View:         sess.view,
			Balance:      sess.ledger.Balance(),
			Totals:       sess.ledger.Totals(),
			Transactions: sess.ledger.Filter(sess.view),
		}
		snap.Chart, snap.Revision = s.chartLocked(sess)
		return nil
	})
	return snap, err
}

// chartLocked builds or fetches the series; the caller holds sess.mu.
func (s *LedgerService) chartLocked(sess *session) (chart.ChartSeries, int) {
	revision := sess.ledger.Len()
	key := chartKey(sess.id) + strconv.Itoa(revision)
	if s.charts != nil {
		if series, ok := s.charts.Get(key); ok {
			return series, revision
		}
	}
	series := chart.Build(sess.ledger.Income(), sess.ledger.Expenses(), sess.ledger.Balance())
	if s.charts != nil {
		s.charts.Set(key, series)
	}
	return series, revision
}

// chartKey is the cache key prefix shared by every revision of a session.
func chartKey(id string) string {
	return id + ":"
}

func (s *LedgerService) dropCharts(id string) {
	if s.charts != nil {
		s.charts.DeletePrefix(chartKey(id))
	}
}

// Count returns the number of open sessions.
func (s *LedgerService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ExpireIdle removes sessions untouched since now minus the TTL and returns
// how many were dropped.
func (s *LedgerService) ExpireIdle(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			s.dropCharts(id)
			expired++
		}
	}
	if expired > 0 {
		s.logger.Info("Idle sessions expired",
			applog.FieldOperation, applog.OpExpire,
			"count", expired,
			"open_sessions", len(s.sessions))
	}
	return expired
}

// StartJanitor runs ExpireIdle every interval until Close.
func (s *LedgerService) StartJanitor(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopJanitor != nil {
		return
	}
	s.stopJanitor = make(chan struct{})
	s.janitorDone = make(chan struct{})

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.ExpireIdle(s.now())
			case <-stop:
				return
			}
		}
	}(s.stopJanitor, s.janitorDone)
}

// Close stops the janitor. Sessions stay readable until the process exits.
func (s *LedgerService) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		stop, done := s.stopJanitor, s.janitorDone
		s.mu.Unlock()
		if stop != nil {
			close(stop)
			<-done
		}
	})
	return nil
}

// with runs fn under the session's lock and refreshes its idle timer.
func (s *LedgerService) with(id string, fn func(*session) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = s.now()
	return fn(sess)
}

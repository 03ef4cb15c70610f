package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/nebulashop-backend/pkg/config"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
	"github.com/angelmondragon/nebulashop-backend/pkg/metrics"
)

const (
	DefaultSessionTTL = 10 * time.Minute
	finalizeTimeout   = 5 * time.Second
)

// Delays holds how long each asynchronous method takes to settle.
type Delays struct {
	NebulaPay time.Duration
	OnChain   time.Duration
	Voucher   time.Duration
	Hybrid    time.Duration
}

// DelaysFromConfig maps the payments config onto settlement delays.
func DelaysFromConfig(cfg config.PaymentsConfig) Delays {
	return Delays{
		NebulaPay: cfg.NebulaPayDelay,
		OnChain:   cfg.OnChainDelay,
		Voucher:   cfg.VoucherDelay,
		Hybrid:    cfg.HybridDelay,
	}
}

// For returns the settlement delay of method. Methods that are reviewed by
// staff report false.
func (d Delays) For(method enums.PaymentMethod) (time.Duration, bool) {
	switch method {
	case enums.PaymentMethodNebulaPay:
		return d.NebulaPay, true
	case enums.PaymentMethodSolanaUSDC, enums.PaymentMethodLightningBTC:
		return d.OnChain, true
	case enums.PaymentMethodOXXOVoucher:
		return d.Voucher, true
	case enums.PaymentMethodSPEIHybrid:
		return d.Hybrid, true
	}
	return 0, false
}

// ManagerOptions wires a Manager.
type ManagerOptions struct {
	Store      Store
	Delays     Delays
	SessionTTL time.Duration
	Logger     *logger.Logger
	Metrics    *metrics.CheckoutMetrics
	Now        func() time.Time
}

// Manager creates payment sessions and drives them to a final status.
type Manager struct {
	store   Store
	delays  Delays
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
	now     func() time.Time

	group singleflight.Group

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("payment session store required")
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		store:   opts.Store,
		delays:  opts.Delays,
		ttl:     opts.SessionTTL,
		logg:    opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
		timers:  make(map[string]*time.Timer),
	}, nil
}

// CreateSession returns the session for req.IdempotencyKey, creating it when
// the key is new. Concurrent calls for one key all receive the same session.
func (m *Manager) CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error) {
	if err := req.validate(); err != nil {
		return Session{}, err
	}
	result, err, _ := m.group.Do(req.IdempotencyKey, func() (any, error) {
		return m.createOnce(ctx, req)
	})
	if err != nil {
		return Session{}, err
	}
	return result.(Session).clone(), nil
}

func (m *Manager) createOnce(ctx context.Context, req CreateSessionRequest) (Session, error) {
	existing, err := m.store.GetByKey(ctx, req.IdempotencyKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment session lookup failed")
	}

	session := m.newSession(req)
	stored, inserted, err := m.store.Insert(ctx, session)
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment session could not be stored")
	}
	if !inserted {
		return stored, nil
	}

	logCtx := m.logg.WithSessionID(ctx, stored.ID)
	logCtx = m.logg.WithFields(logCtx, map[string]any{
		"method":    string(stored.Method),
		"reference": stored.Reference,
		"amount":    stored.Amount.StringFixed(2),
		"status":    string(stored.Status),
	})
	m.logg.Info(logCtx, "payment session created")
	m.metrics.IncSessionCreated(string(stored.Method))
	if stored.Status == enums.SessionStatusAwaitingReview {
		m.metrics.IncTransition(string(enums.SessionStatusAwaitingReview))
	}

	if delay, ok := m.delays.For(stored.Method); ok {
		m.schedule(stored.ID, delay)
	}
	return stored, nil
}

func (m *Manager) newSession(req CreateSessionRequest) Session {
	now := m.now()
	reference := newReference(now)
	amount := req.Total.Round(2)
	settlement := BuildInstructions(req.Method, reference, amount)

	status := enums.SessionStatusPending
	if req.Method.RequiresManualReview() {
		status = enums.SessionStatusAwaitingReview
	}
	return Session{
		ID:             uuid.NewString(),
		IdempotencyKey: req.IdempotencyKey,
		Method:         req.Method,
		Amount:         amount,
		Currency:       enums.CurrencyUSD,
		Status:         status,
		Reference:      reference,
		Instructions:   settlement.Instructions,
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.ttl),
		Address:        settlement.Address,
		Memo:           settlement.Memo,
		QRPayload:      settlement.QRPayload,
		VoucherHint:    settlement.VoucherHint,
	}
}

func (m *Manager) schedule(id string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if _, exists := m.timers[id]; exists {
		return
	}
	m.timers[id] = time.AfterFunc(delay, func() { m.finalize(id) })
}

func (m *Manager) cancel(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if timer, ok := m.timers[id]; ok {
		timer.Stop()
		delete(m.timers, id)
	}
}

// finalize settles a still pending session. A session past its deadline
// expires instead of confirming.
func (m *Manager) finalize(id string) {
	m.mu.Lock()
	delete(m.timers, id)
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()
	ctx = m.logg.WithSessionID(ctx, id)

	session, err := m.store.Get(ctx, id)
	if err != nil {
		m.logg.Error(ctx, "payment session finalize lookup failed", err)
		return
	}
	if session.Status != enums.SessionStatusPending {
		m.logg.Debug(ctx, "payment session already settled")
		return
	}
	target := enums.SessionStatusConfirmed
	if session.PastDeadline(m.now()) {
		target = enums.SessionStatusExpired
	}
	m.transition(ctx, id, target)
}

func (m *Manager) transition(ctx context.Context, id string, to enums.SessionStatus) (Session, error) {
	session, swapped, err := m.store.CompareAndSwapStatus(ctx, id, enums.SessionStatusPending, to)
	if err != nil {
		m.logg.Error(ctx, "payment session transition failed", err)
		return Session{}, err
	}
	if swapped {
		m.metrics.IncTransition(string(to))
		m.logg.Info(m.logg.WithField(ctx, "status", string(to)), "payment session "+string(to))
	}
	return session, nil
}

// GetSession returns the session with the given id. A pending session whose
// deadline has passed is expired on read.
func (m *Manager) GetSession(ctx context.Context, id string) (Session, error) {
	session, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return Session{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("payment session %s not found", id))
	}
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment session lookup failed")
	}
	if !session.PastDeadline(m.now()) {
		return session, nil
	}

	m.cancel(id)
	expired, err := m.transition(m.logg.WithSessionID(ctx, id), id, enums.SessionStatusExpired)
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment session expiry failed")
	}
	return expired, nil
}

// Close stops every outstanding finalize timer. Sessions left pending expire
// on their next read once their deadline passes.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
	return nil
}

func (m *Manager) scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

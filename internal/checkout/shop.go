package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/nebulashop-backend/internal/cart"
	"github.com/angelmondragon/nebulashop-backend/internal/catalog"
	"github.com/angelmondragon/nebulashop-backend/internal/checkout/helpers"
	"github.com/angelmondragon/nebulashop-backend/internal/events"
	"github.com/angelmondragon/nebulashop-backend/internal/ledger"
	"github.com/angelmondragon/nebulashop-backend/internal/orders"
	"github.com/angelmondragon/nebulashop-backend/internal/payments"
	"github.com/angelmondragon/nebulashop-backend/internal/rewards"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
	"github.com/angelmondragon/nebulashop-backend/pkg/metrics"
)

const (
	baseCoinsPerOrder = 100
	fallbackFailure   = "checkout failed"
)

var coinsEarnRate = decimal.RequireFromString("0.05")

type sessionCreator interface {
	CreateSession(ctx context.Context, req payments.CreateSessionRequest) (payments.Session, error)
}

// Dependencies are shared by every shop in a registry.
type Dependencies struct {
	Catalog      catalog.Reader
	Sessions     sessionCreator
	Waiter       payments.Awaiter
	Publisher    events.Publisher
	Metrics      *metrics.CheckoutMetrics
	Logger       *logger.Logger
	AwaitTimeout time.Duration
	Now          func() time.Time
}

func (d Dependencies) withDefaults() (Dependencies, error) {
	if d.Catalog == nil {
		return d, fmt.Errorf("catalog required")
	}
	if d.Sessions == nil {
		return d, fmt.Errorf("payment session manager required")
	}
	if d.Waiter == nil {
		return d, fmt.Errorf("confirmation waiter required")
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d, nil
}

// State is the observable view of a shop.
type State struct {
	ShopperID        string               `json:"shopper_id"`
	CheckoutStatus   enums.CheckoutStatus `json:"checkout_status"`
	CheckoutError    string               `json:"checkout_error,omitempty"`
	PaymentSession   *payments.Session    `json:"payment_session"`
	Orders           []orders.Order       `json:"orders"`
	CoinsBalance     int64                `json:"coins_balance"`
	CoinLedger       []ledger.Entry       `json:"coin_ledger"`
	SelectedRewardID string               `json:"selected_reward_id,omitempty"`
	PaymentMethod    enums.PaymentMethod  `json:"payment_method,omitempty"`
	Cart             cart.Quote           `json:"cart"`
}

// Shop is one shopper's cart, wallet and checkout state machine. All methods
// are safe for concurrent use; payment calls run without holding the lock.
type Shop struct {
	shopperID string
	deps      Dependencies

	mu             sync.Mutex
	cart           *cart.Cart
	wallet         *ledger.Wallet
	history        *orders.History
	rewardID       string
	method         enums.PaymentMethod
	status         enums.CheckoutStatus
	checkoutErr    string
	paymentSession *payments.Session
	// committed holds the session ids already turned into orders.
	committed map[string]struct{}

	inflight sync.WaitGroup
}

func NewShop(shopperID string, startingCoins int64, deps Dependencies) (*Shop, error) {
	if shopperID == "" {
		return nil, fmt.Errorf("shopper id required")
	}
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	wallet, err := ledger.NewWallet(startingCoins)
	if err != nil {
		return nil, err
	}
	return &Shop{
		shopperID: shopperID,
		deps:      deps,
		cart:      cart.New(),
		wallet:    wallet,
		history:   orders.NewHistory(),
		status:    enums.CheckoutStatusIdle,
		committed: make(map[string]struct{}),
	}, nil
}

func (s *Shop) ShopperID() string {
	return s.shopperID
}

// PriceCart prices the current cart against the catalog.
func (s *Shop) PriceCart() cart.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priceLocked()
}

func (s *Shop) priceLocked() cart.Quote {
	return cart.Price(s.cart.Entries(), s.deps.Catalog)
}

// AddItem adds quantity of a product, merging with an existing entry.
func (s *Shop) AddItem(entry cart.Entry) error {
	if entry.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := s.checkSelection(entry); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureNotProcessingLocked(); err != nil {
		return err
	}
	s.cart.Add(entry)
	s.revalidateRewardLocked()
	return nil
}

// UpdateItem replaces a product's entry. Quantity zero or less removes it.
func (s *Shop) UpdateItem(entry cart.Entry) error {
	if entry.Quantity > 0 {
		if err := s.checkSelection(entry); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureNotProcessingLocked(); err != nil {
		return err
	}
	s.cart.Set(entry)
	s.revalidateRewardLocked()
	return nil
}

// RemoveItem drops a product from the cart and reports whether it was there.
func (s *Shop) RemoveItem(productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureNotProcessingLocked(); err != nil {
		return false, err
	}
	removed := s.cart.Remove(productID)
	s.revalidateRewardLocked()
	return removed, nil
}

// ensureNotProcessingLocked refuses changes to the checkout inputs while a
// checkout is in flight. The commit clears the cart and reward it priced.
func (s *Shop) ensureNotProcessingLocked() error {
	if s.status == enums.CheckoutStatusProcessing {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is processing, cart is locked")
	}
	return nil
}

func (s *Shop) checkSelection(entry cart.Entry) error {
	product, ok := s.deps.Catalog.GetProduct(entry.ProductID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", entry.ProductID))
	}
	return cart.ValidateSelection(product, entry)
}

// SelectReward activates a reward tier when the cart and balance qualify.
// An ineligible tier leaves the current selection untouched.
func (s *Shop) SelectReward(rewardID string) error {
	tier, ok := s.deps.Catalog.Reward(rewardID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("reward %s not found", rewardID))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureNotProcessingLocked(); err != nil {
		return err
	}
	if err := rewards.Evaluate(tier, s.priceLocked().Subtotal, s.wallet.Balance()); err != nil {
		return err
	}
	s.rewardID = tier.ID
	s.checkoutErr = ""
	return nil
}

func (s *Shop) ClearReward() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureNotProcessingLocked(); err != nil {
		return err
	}
	s.rewardID = ""
	return nil
}

// revalidateRewardLocked drops a selected reward the shop no longer qualifies for.
func (s *Shop) revalidateRewardLocked() {
	if s.rewardID == "" {
		return
	}
	tier, ok := s.deps.Catalog.Reward(s.rewardID)
	if !ok || !rewards.IsEligible(tier, s.priceLocked().Subtotal, s.wallet.Balance()) {
		s.rewardID = ""
	}
}

// SetPaymentMethod selects how the next checkout pays. An empty method clears it.
func (s *Shop) SetPaymentMethod(method enums.PaymentMethod) error {
	if method != "" && !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment method %q", method))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureNotProcessingLocked(); err != nil {
		return err
	}
	s.method = method
	return nil
}

// ResetCheckoutStatus returns a finished checkout to idle.
func (s *Shop) ResetCheckoutStatus() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == enums.CheckoutStatusProcessing {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is still processing")
	}
	s.status = enums.CheckoutStatusIdle
	s.checkoutErr = ""
	return nil
}

func (s *Shop) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Order looks up one of the retained orders by id.
func (s *Shop) Order(id string) (orders.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Get(id)
}

// TotalSpent sums the totals of the retained orders.
func (s *Shop) TotalSpent() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.TotalSpent()
}

func (s *Shop) stateLocked() State {
	var session *payments.Session
	if s.paymentSession != nil {
		copied := *s.paymentSession
		copied.Instructions = append([]string(nil), s.paymentSession.Instructions...)
		session = &copied
	}
	return State{
		ShopperID:        s.shopperID,
		CheckoutStatus:   s.status,
		CheckoutError:    s.checkoutErr,
		PaymentSession:   session,
		Orders:           s.history.List(),
		CoinsBalance:     s.wallet.Balance(),
		CoinLedger:       s.wallet.Entries(),
		SelectedRewardID: s.rewardID,
		PaymentMethod:    s.method,
		Cart:             s.priceLocked(),
	}
}

// CoinsEarned is the coin reward for an order with the given subtotal.
func CoinsEarned(subtotal decimal.Decimal) int64 {
	if !subtotal.IsPositive() {
		return 0
	}
	return baseCoinsPerOrder + subtotal.Mul(coinsEarnRate).Ceil().IntPart()
}

// attempt is everything a checkout fixes before talking to payments.
type attempt struct {
	quote       cart.Quote
	tier        *catalog.RewardTier
	discount    decimal.Decimal
	total       decimal.Decimal
	coinsEarned int64
	method      enums.PaymentMethod
	key         string
}

// Checkout runs a full checkout and returns the resulting state. A call made
// while another checkout is processing returns without side effects.
func (s *Shop) Checkout(ctx context.Context) State {
	att, state := s.begin(ctx)
	if att == nil {
		return state
	}
	s.run(ctx, att)
	return s.State()
}

// StartCheckout validates and opens a checkout, then finishes it in the
// background. The returned state is processing unless validation failed.
func (s *Shop) StartCheckout(ctx context.Context) State {
	att, state := s.begin(ctx)
	if att == nil {
		return state
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.run(context.WithoutCancel(ctx), att)
	}()
	return state
}

// Wait blocks until background checkouts started with StartCheckout finish
// or ctx is done.
func (s *Shop) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Shop) begin(ctx context.Context) (*attempt, State) {
	ctx = s.deps.Logger.WithShopperID(ctx, s.shopperID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == enums.CheckoutStatusProcessing {
		return nil, s.stateLocked()
	}
	s.status = enums.CheckoutStatusProcessing
	s.checkoutErr = ""
	s.paymentSession = nil

	quote := s.priceLocked()
	if quote.Empty() {
		s.failLocked(ctx, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
		return nil, s.stateLocked()
	}
	if s.method == "" {
		s.failLocked(ctx, pkgerrors.New(pkgerrors.CodeValidation, "no payment method selected"))
		return nil, s.stateLocked()
	}

	att := &attempt{
		quote:       quote,
		discount:    decimal.Zero,
		method:      s.method,
		coinsEarned: CoinsEarned(quote.Subtotal),
	}
	if s.rewardID != "" {
		tier, ok := s.deps.Catalog.Reward(s.rewardID)
		if !ok {
			s.failLocked(ctx, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("reward %s not found", s.rewardID)))
			return nil, s.stateLocked()
		}
		if err := rewards.Evaluate(tier, quote.Subtotal, s.wallet.Balance()); err != nil {
			s.failLocked(ctx, err)
			return nil, s.stateLocked()
		}
		att.tier = &tier
		att.discount = tier.DiscountValue
	}
	att.total = decimal.Max(decimal.Zero, quote.Subtotal.Sub(att.discount))
	att.key = helpers.BuildIdempotencyKey(s.shopperID, quote.Items, s.rewardID, s.method)
	return att, s.stateLocked()
}

func (s *Shop) run(ctx context.Context, att *attempt) {
	if s.deps.AwaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.AwaitTimeout)
		defer cancel()
	}
	logg := s.deps.Logger
	ctx = logg.WithShopperID(ctx, s.shopperID)

	var rewardID *string
	if att.tier != nil {
		id := att.tier.ID
		rewardID = &id
	}
	session, err := s.deps.Sessions.CreateSession(ctx, payments.CreateSessionRequest{
		IdempotencyKey: att.key,
		Subtotal:       att.quote.Subtotal,
		Discount:       att.discount,
		Total:          att.total,
		RewardID:       rewardID,
		Items:          att.quote.Items,
		Method:         att.method,
	})
	if err != nil {
		s.fail(ctx, err)
		return
	}
	ctx = logg.WithSessionID(ctx, session.ID)
	s.mu.Lock()
	s.paymentSession = &session
	s.mu.Unlock()

	started := s.deps.Now()
	final, err := s.deps.Waiter.Await(ctx, session.ID)
	s.deps.Metrics.ObserveWait(string(att.method), s.deps.Now().Sub(started))
	if err != nil {
		s.fail(ctx, err)
		return
	}

	s.mu.Lock()
	s.paymentSession = &final
	if final.Status == enums.SessionStatusExpired {
		s.failLocked(ctx, pkgerrors.New(pkgerrors.CodeExpired, "payment session expired"))
		s.mu.Unlock()
		return
	}
	if _, done := s.committed[final.ID]; done {
		s.settleDuplicateLocked()
		s.mu.Unlock()
		s.deps.Metrics.IncOutcome(string(enums.CheckoutStatusSucceeded))
		logg.Info(ctx, "checkout already committed for session")
		return
	}
	order, err := s.commitLocked(att, final)
	if err != nil {
		s.failLocked(ctx, err)
		s.mu.Unlock()
		return
	}
	s.committed[final.ID] = struct{}{}
	s.status = enums.CheckoutStatusSucceeded
	s.mu.Unlock()

	s.deps.Metrics.IncOutcome(string(enums.CheckoutStatusSucceeded))
	ctx = logg.WithFields(logg.WithOrderID(ctx, order.ID), map[string]any{
		"order_status": string(order.Status),
		"total":        order.Total.StringFixed(2),
		"coins_earned": order.CoinsEarned,
	})
	logg.Info(ctx, "checkout committed")

	if err := s.deps.Publisher.OrderCommitted(ctx, s.shopperID, order); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "order committed event not published")
	}
}

// shopSnapshot holds everything a commit may touch.
type shopSnapshot struct {
	cart     []cart.Entry
	rewardID string
	wallet   ledger.State
	orders   []orders.Order
}

func (s *Shop) snapshotLocked() shopSnapshot {
	return shopSnapshot{
		cart:     s.cart.Snapshot(),
		rewardID: s.rewardID,
		wallet:   s.wallet.Snapshot(),
		orders:   s.history.Snapshot(),
	}
}

func (s *Shop) restoreLocked(snap shopSnapshot) {
	s.cart.Restore(snap.cart)
	s.rewardID = snap.rewardID
	s.wallet.Restore(snap.wallet)
	s.history.Restore(snap.orders)
}

// withRollbackLocked runs fn and rewinds cart, reward, wallet and orders if
// it fails or panics.
func (s *Shop) withRollbackLocked(fn func() error) (err error) {
	snap := s.snapshotLocked()
	defer func() {
		if r := recover(); r != nil {
			s.restoreLocked(snap)
			err = pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("commit panicked: %v", r))
			return
		}
		if err != nil {
			s.restoreLocked(snap)
		}
	}()
	return fn()
}

func (s *Shop) commitLocked(att *attempt, final payments.Session) (orders.Order, error) {
	confirmed := final.Status == enums.SessionStatusConfirmed
	var order orders.Order
	err := s.withRollbackLocked(func() error {
		entries := make([]ledger.RecordInput, 0, 2)
		if att.tier != nil && att.tier.Coins > 0 {
			verb := "Reserved"
			if confirmed {
				verb = "Redeemed"
			}
			entries = append(entries, ledger.RecordInput{
				Type:        enums.LedgerEntryTypeBurn,
				Amount:      att.tier.Coins,
				Description: fmt.Sprintf("%s %s", verb, rewardLabel(att.tier)),
			})
		}
		if confirmed && att.coinsEarned > 0 {
			entries = append(entries, ledger.RecordInput{
				Type:        enums.LedgerEntryTypeEarn,
				Amount:      att.coinsEarned,
				Description: fmt.Sprintf("Earned on order %s", final.Reference),
			})
		}
		if _, err := s.wallet.Record(entries...); err != nil {
			return err
		}

		status := enums.OrderStatusPending
		if confirmed {
			status = enums.OrderStatusPaid
		}
		var rewardID *string
		if att.tier != nil {
			id := att.tier.ID
			rewardID = &id
		}
		order = orders.Order{
			ID:          final.ID,
			Subtotal:    att.quote.Subtotal,
			Discount:    att.discount,
			Total:       att.total,
			RewardID:    rewardID,
			CoinsEarned: att.coinsEarned,
			CreatedAt:   s.deps.Now(),
			Status:      status,
			Payment:     orders.PaymentSummary{Method: final.Method, Reference: final.Reference},
			Items:       att.quote.Items,
		}
		s.history.Prepend(order)
		s.cart.Clear()
		s.rewardID = ""
		return nil
	})
	return order, err
}

// settleDuplicateLocked finishes a checkout whose session already produced an
// order. The cart it priced is paid for, so it is cleared without a second
// order or ledger entry.
func (s *Shop) settleDuplicateLocked() {
	s.cart.Clear()
	s.rewardID = ""
	s.status = enums.CheckoutStatusSucceeded
}

func rewardLabel(tier *catalog.RewardTier) string {
	if tier.Label != "" {
		return tier.Label
	}
	return tier.ID
}

func (s *Shop) fail(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(ctx, err)
}

func (s *Shop) failLocked(ctx context.Context, err error) {
	s.status = enums.CheckoutStatusFailed
	s.checkoutErr = failureMessage(err)
	s.deps.Metrics.IncOutcome(string(enums.CheckoutStatusFailed))
	logg := s.deps.Logger
	logg.Warn(logg.WithField(ctx, "error", err.Error()), "checkout failed")
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "payment confirmation timed out"
	case errors.Is(err, context.Canceled):
		return "checkout cancelled"
	}
	return pkgerrors.PublicMessage(err, fallbackFailure)
}

package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
)

// MaxEntries bounds the retained history; older entries fall off the end.
const MaxEntries = 50

// Entry is an immutable coin ledger record.
type Entry struct {
	ID          string                `json:"id"`
	Type        enums.LedgerEntryType `json:"type"`
	Amount      int64                 `json:"amount"`
	Description string                `json:"description"`
	CreatedAt   time.Time             `json:"created_at"`
}

// RecordInput captures the data a new ledger entry requires.
type RecordInput struct {
	Type        enums.LedgerEntryType
	Amount      int64
	Description string
}

func (in RecordInput) delta() int64 {
	if in.Type == enums.LedgerEntryTypeBurn {
		return -in.Amount
	}
	return in.Amount
}

// State is a point-in-time copy of a wallet, used for rollback.
type State struct {
	Balance int64
	Entries []Entry
}

// Wallet holds a coin balance and its bounded, most-recent-first ledger.
type Wallet struct {
	mu      sync.RWMutex
	balance int64
	entries []Entry
	now     func() time.Time
}

// NewWallet opens a wallet with the given starting balance.
func NewWallet(startingBalance int64) (*Wallet, error) {
	if startingBalance < 0 {
		return nil, fmt.Errorf("starting balance must not be negative")
	}
	return &Wallet{balance: startingBalance, now: time.Now}, nil
}

func (w *Wallet) Balance() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.balance
}

// Entries returns a copy of the ledger, most recent first.
func (w *Wallet) Entries() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Entry(nil), w.entries...)
}

// Record appends every input and moves the balance by their net amount in one
// step. Either all inputs are applied or none are.
func (w *Wallet) Record(inputs ...RecordInput) ([]Entry, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	var delta int64
	for _, in := range inputs {
		if !in.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger entry type %q", in.Type))
		}
		if in.Amount <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger amount must be positive")
		}
		delta += in.delta()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.balance+delta < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient coins: balance %d, change %d", w.balance, delta))
	}

	now := w.now()
	created := make([]Entry, 0, len(inputs))
	for _, in := range inputs {
		created = append(created, Entry{
			ID:          uuid.NewString(),
			Type:        in.Type,
			Amount:      in.Amount,
			Description: in.Description,
			CreatedAt:   now,
		})
	}

	next := make([]Entry, 0, min(len(created)+len(w.entries), MaxEntries))
	for i := len(created) - 1; i >= 0 && len(next) < MaxEntries; i-- {
		next = append(next, created[i])
	}
	for _, entry := range w.entries {
		if len(next) == MaxEntries {
			break
		}
		next = append(next, entry)
	}

	w.balance += delta
	w.entries = next
	return created, nil
}

// Snapshot captures balance and history together.
func (w *Wallet) Snapshot() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return State{Balance: w.balance, Entries: append([]Entry(nil), w.entries...)}
}

// Restore rewinds the wallet to a snapshot taken earlier by the same owner.
func (w *Wallet) Restore(state State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = state.Balance
	w.entries = append([]Entry(nil), state.Entries...)
}

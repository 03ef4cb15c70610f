package ledger

import (
	"fmt"
	"testing"

	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
)

func TestWallet_RecordAppliesNetDeltaAtomically(t *testing.T) {
	w, err := NewWallet(200)
	if err != nil {
		t.Fatalf("unexpected wallet error: %v", err)
	}

	created, err := w.Record(
		RecordInput{Type: enums.LedgerEntryTypeBurn, Amount: 150, Description: "Redeemed Free shipping credit"},
		RecordInput{Type: enums.LedgerEntryTypeEarn, Amount: 105, Description: "Earned coins"},
	)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(created))
	}
	if got := w.Balance(); got != 155 {
		t.Fatalf("expected balance 155, got %d", got)
	}

	entries := w.Entries()
	if entries[0].Type != enums.LedgerEntryTypeEarn || entries[1].Type != enums.LedgerEntryTypeBurn {
		t.Fatalf("expected most recent first, got %+v", entries)
	}
	if entries[0].ID == "" || entries[0].CreatedAt.IsZero() {
		t.Fatalf("entry missing id/timestamp: %+v", entries[0])
	}
}

func TestWallet_RecordRejectsOverdraftWithoutSideEffects(t *testing.T) {
	w, _ := NewWallet(100)

	_, err := w.Record(RecordInput{Type: enums.LedgerEntryTypeBurn, Amount: 500, Description: "too much"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if w.Balance() != 100 || len(w.Entries()) != 0 {
		t.Fatalf("failed record must not change wallet")
	}
}

func TestWallet_RecordValidation(t *testing.T) {
	w, _ := NewWallet(100)
	tests := []struct {
		name  string
		input RecordInput
	}{
		{name: "zero amount", input: RecordInput{Type: enums.LedgerEntryTypeEarn}},
		{name: "negative amount", input: RecordInput{Type: enums.LedgerEntryTypeEarn, Amount: -1}},
		{name: "invalid type", input: RecordInput{Type: "refund", Amount: 10}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := w.Record(tc.input); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
	if w.Balance() != 100 {
		t.Fatalf("validation failures must not touch balance")
	}
}

func TestWallet_KeepsFiftyMostRecent(t *testing.T) {
	w, _ := NewWallet(0)
	const total = 73
	for i := 1; i <= total; i++ {
		if _, err := w.Record(RecordInput{Type: enums.LedgerEntryTypeEarn, Amount: 1, Description: fmt.Sprintf("entry-%d", i)}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	entries := w.Entries()
	if len(entries) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(entries))
	}
	for i, entry := range entries {
		want := fmt.Sprintf("entry-%d", total-i)
		if entry.Description != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, entry.Description)
		}
	}
	if w.Balance() != total {
		t.Fatalf("balance should count every entry, got %d", w.Balance())
	}
}

func TestWallet_SnapshotRestore(t *testing.T) {
	w, _ := NewWallet(300)
	snap := w.Snapshot()

	if _, err := w.Record(RecordInput{Type: enums.LedgerEntryTypeBurn, Amount: 250, Description: "reserve"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	w.Restore(snap)

	if w.Balance() != 300 || len(w.Entries()) != 0 {
		t.Fatalf("restore did not rewind wallet: balance=%d entries=%d", w.Balance(), len(w.Entries()))
	}
}

func TestNewWalletRejectsNegativeBalance(t *testing.T) {
	if _, err := NewWallet(-1); err == nil {
		t.Fatal("expected negative starting balance to fail")
	}
}

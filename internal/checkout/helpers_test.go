package checkout

import (
	"github.com/angelmondragon/nebulashop-backend/internal/ledger"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
)

func ledgerBurn(amount int64) ledger.RecordInput {
	return ledger.RecordInput{Type: enums.LedgerEntryTypeBurn, Amount: amount, Description: "test drain"}
}

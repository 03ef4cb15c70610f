package payments

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
)

const (
	merchantName         = "Nebula Shop"
	solanaMerchantWallet = "NebuLa7shopV4uLTq9cXw3pZ8mKfR2yHdE6sJtB1nWoA"
	usdcMint             = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	speiCLABE            = "646180157000000004"
	speiBank             = "STP"
	nebulaPayBaseURL     = "https://pay.nebula.shop/s/"
	meetupPoint          = "Nebula Shop pickup desk, Av. Reforma 222, CDMX"
)

// Settlement is the method-specific guidance attached to a session.
type Settlement struct {
	Instructions []string
	Address      string
	Memo         string
	QRPayload    string
	VoucherHint  string
}

// BuildInstructions derives settlement guidance from method, reference and
// amount alone. Equal inputs always produce equal output.
func BuildInstructions(method enums.PaymentMethod, reference string, amount decimal.Decimal) Settlement {
	display := amount.StringFixed(2)
	switch method {
	case enums.PaymentMethodNebulaPay:
		link := nebulaPayBaseURL + url.PathEscape(reference)
		return Settlement{
			Instructions: []string{
				fmt.Sprintf("Open the Nebula Pay terminal at %s.", link),
				fmt.Sprintf("Approve the charge of %s USD.", display),
				"Keep this page open; it updates once the terminal confirms.",
			},
			QRPayload: link,
		}
	case enums.PaymentMethodSolanaUSDC:
		query := url.Values{}
		query.Set("amount", display)
		query.Set("spl-token", usdcMint)
		query.Set("label", merchantName)
		query.Set("memo", reference)
		return Settlement{
			Instructions: []string{
				fmt.Sprintf("Send exactly %s USDC on Solana to %s.", display, solanaMerchantWallet),
				fmt.Sprintf("Include the memo %s so the transfer can be matched.", reference),
				"Scan the QR code with a Solana Pay compatible wallet to prefill the transfer.",
			},
			Address:   solanaMerchantWallet,
			Memo:      reference,
			QRPayload: "solana:" + solanaMerchantWallet + "?" + query.Encode(),
		}
	case enums.PaymentMethodLightningBTC:
		invoice := lightningInvoice(reference, amount)
		return Settlement{
			Instructions: []string{
				fmt.Sprintf("Pay the Lightning invoice for %s USD worth of BTC.", display),
				"Scan the QR code with any Lightning wallet.",
				"The invoice is bound to this session and cannot be reused.",
			},
			Memo:      reference,
			QRPayload: "lightning:" + invoice,
		}
	case enums.PaymentMethodOXXOVoucher:
		voucher := voucherNumber(reference)
		return Settlement{
			Instructions: []string{
				"Visit any OXXO store and ask to pay a Nebula Shop voucher.",
				fmt.Sprintf("Give the cashier voucher number %s.", voucher),
				fmt.Sprintf("Pay %s USD in cash (MXN equivalent at the register).", display),
				"Keep your receipt until the order shows as paid.",
			},
			VoucherHint: voucher,
		}
	case enums.PaymentMethodSPEIHybrid:
		voucher := voucherNumber(reference)
		return Settlement{
			Instructions: []string{
				fmt.Sprintf("Send a SPEI transfer of %s USD (MXN equivalent) to CLABE %s at %s.", display, speiCLABE, speiBank),
				fmt.Sprintf("Use %s as the payment concept.", reference),
				fmt.Sprintf("No bank access? Pay voucher %s at a partner store instead.", voucher),
			},
			Address:     speiCLABE,
			Memo:        reference,
			VoucherHint: voucher,
		}
	case enums.PaymentMethodCashMeetup:
		return Settlement{
			Instructions: []string{
				fmt.Sprintf("Bring %s USD in cash to %s.", display, meetupPoint),
				fmt.Sprintf("Show reference %s to the staff member.", reference),
				"Staff will review the handoff and mark the order as paid.",
			},
			Memo: reference,
		}
	default:
		return Settlement{Instructions: []string{fmt.Sprintf("Pay %s USD quoting reference %s.", display, reference)}}
	}
}

// voucherNumber renders a 14 digit voucher code bound to the reference.
func voucherNumber(reference string) string {
	sum := sha256.Sum256([]byte("voucher:" + reference))
	n := binary.BigEndian.Uint64(sum[:8]) % 100_000_000_000_000
	return fmt.Sprintf("%014d", n)
}

func lightningInvoice(reference string, amount decimal.Decimal) string {
	cents := amount.Shift(2).Round(0).IntPart()
	sum := sha256.Sum256([]byte("ln:" + reference))
	tag := strings.ToLower(strings.ReplaceAll(reference, "-", ""))
	return fmt.Sprintf("lnbc%dn1%s%x", cents, tag, sum[:10])
}

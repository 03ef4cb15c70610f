package payments

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newReference builds a shopper facing code: NB-<base36 millis>-<4 random>.
func newReference(now time.Time) string {
	var b strings.Builder
	b.WriteString("NB-")
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	b.WriteByte('-')
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			n = big.NewInt(int64(now.UnixNano()>>uint(i*5)) & 31)
		}
		b.WriteByte(referenceAlphabet[n.Int64()])
	}
	return b.String()
}

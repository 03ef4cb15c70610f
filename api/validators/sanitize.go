package validators

import (
	"fmt"
	"strings"
	"unicode"

	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
)

// SanitizeIdentifier trims an externally supplied id such as a shopper id,
// product id or request id. Empty ids, ids longer than maxLen and ids with
// whitespace or control characters inside are rejected.
func SanitizeIdentifier(field, input string, maxLen int) (string, error) {
	id := strings.TrimSpace(input)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "missing "+field)
	}
	if maxLen > 0 && len(id) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s too long", field)).
			WithDetails(map[string]any{"field": field, "max_length": maxLen})
	}
	if strings.IndexFunc(id, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s contains invalid characters", field)).
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

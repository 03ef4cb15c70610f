package payments

import (
	"context"
	"errors"

	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
)

// ErrSessionNotFound is returned by stores for unknown ids or keys.
var ErrSessionNotFound = errors.New("payment session not found")

// Store persists sessions under both their id and their idempotency key.
// Implementations must be safe for concurrent use and hand out copies.
type Store interface {
	// Insert stores session unless its idempotency key is already taken. It
	// returns the stored session and whether this call inserted it.
	Insert(ctx context.Context, session Session) (Session, bool, error)
	Get(ctx context.Context, id string) (Session, error)
	GetByKey(ctx context.Context, idempotencyKey string) (Session, error)
	// CompareAndSwapStatus moves the session to `to` only while it is in
	// `from`. It returns the session as it stands after the call.
	CompareAndSwapStatus(ctx context.Context, id string, from, to enums.SessionStatus) (Session, bool, error)
}

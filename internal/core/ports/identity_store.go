package ports

import "context"

// Keys used in the identity store.
const (
	KeyUsers          = "users"
	KeyCurrentSession = "current_session"
)

// IdentityStore is a persistent key/value mapping holding serialized record
// collections. Get reports found=false for absent keys without an error.
type IdentityStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

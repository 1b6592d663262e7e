// Package slot defines the persisted key-value slot the ledger is kept in.
package slot

import "context"

// Slot is a named key-value location holding serialized bytes. A missing key
// is reported with ok == false and a nil error.
type Slot interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by slots that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

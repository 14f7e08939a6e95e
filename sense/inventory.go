package sense

import (
	"context"
	"fmt"
	"time"
)

// Inventory maps sense keys to canonical sense identifiers. A key unknown to
// the inventory is not an error: found is false.
type Inventory interface {
	Lookup(ctx context.Context, key string) (id string, found bool, err error)

	// LookupBatch returns the ids of the known keys. Unknown keys are absent
	// from the map.
	LookupBatch(ctx context.Context, keys []string) (map[string]string, error)
}

// MapInventory is an in-memory Inventory.
type MapInventory map[string]string

var _ Inventory = MapInventory(nil)

func (m MapInventory) Lookup(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	id, ok := m[key]
	return id, ok, nil
}

func (m MapInventory) LookupBatch(ctx context.Context, keys []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(keys))
	for _, k := range keys {
		if id, ok := m[k]; ok {
			ids[k] = id
		}
	}
	return ids, nil
}

type retryInventory struct {
	inv      Inventory
	attempts int
	timeout  time.Duration
}

// WithRetry bounds every call to inv by timeout and retries failed calls up to
// attempts times in total. A zero timeout means no per attempt deadline.
func WithRetry(inv Inventory, attempts int, timeout time.Duration) Inventory {
	if attempts < 1 {
		attempts = 1
	}
	return &retryInventory{inv: inv, attempts: attempts, timeout: timeout}
}

func (r *retryInventory) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for i := 0; i < r.attempts; i++ {
		if cerr := ctx.Err(); cerr != nil {
			if err == nil {
				err = cerr
			}
			break
		}

		actx, cancel := ctx, context.CancelFunc(func() {})
		if r.timeout > 0 {
			actx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		err = fn(actx)
		cancel()

		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("inventory lookup failed after %d attempts: %w", r.attempts, err)
}

func (r *retryInventory) Lookup(ctx context.Context, key string) (string, bool, error) {
	var (
		id    string
		found bool
	)
	err := r.attempt(ctx, func(ctx context.Context) error {
		var err error
		id, found, err = r.inv.Lookup(ctx, key)
		return err
	})
	return id, found, err
}

func (r *retryInventory) LookupBatch(ctx context.Context, keys []string) (map[string]string, error) {
	var ids map[string]string
	err := r.attempt(ctx, func(ctx context.Context) error {
		var err error
		ids, err = r.inv.LookupBatch(ctx, keys)
		return err
	})
	return ids, err
}

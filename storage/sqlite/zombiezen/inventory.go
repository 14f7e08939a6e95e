package zombiezen

import (
	"context"
	"fmt"
	"strings"

	"github.com/revelaction/semalign/sense"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// batchSize keeps IN lists below the SQLite variable limit.
const batchSize = 500

// Inventory is a sense inventory backed by the senses table.
type Inventory struct {
	pool *sqlitex.Pool
}

var _ sense.Inventory = (*Inventory)(nil)

func NewInventory(pool *sqlitex.Pool) *Inventory {
	return &Inventory{pool: pool}
}

func (inv *Inventory) Lookup(ctx context.Context, key string) (string, bool, error) {
	conn, err := inv.pool.Take(ctx)
	if err != nil {
		return "", false, err
	}
	defer inv.pool.Put(conn)

	var (
		id    string
		found bool
	)
	err = sqlitex.Execute(conn, "SELECT synset FROM senses WHERE sensekey = ?", &sqlitex.ExecOptions{
		Args: []interface{}{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id = stmt.ColumnText(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return "", false, err
	}
	return id, found, nil
}

func (inv *Inventory) LookupBatch(ctx context.Context, keys []string) (map[string]string, error) {
	conn, err := inv.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer inv.pool.Put(conn)

	ids := make(map[string]string, len(keys))
	for start := 0; start < len(keys); start += batchSize {
		end := min(start+batchSize, len(keys))
		chunk := keys[start:end]

		args := make([]interface{}, len(chunk))
		for i, k := range chunk {
			args[i] = k
		}
		query := fmt.Sprintf("SELECT sensekey, synset FROM senses WHERE sensekey IN (%s)",
			strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ","))

		err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				ids[stmt.ColumnText(0)] = stmt.ColumnText(1)
				return nil
			},
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// Import inserts or replaces the senses of m in one transaction and returns
// the number of rows written.
func (inv *Inventory) Import(ctx context.Context, m sense.MapInventory) (n int, err error) {
	conn, err := inv.pool.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer inv.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	for key, id := range m {
		err = sqlitex.Execute(conn, "INSERT OR REPLACE INTO senses (sensekey, synset) VALUES (?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{key, id},
		})
		if err != nil {
			return n, fmt.Errorf("failed to insert sense %s: %w", key, err)
		}
		n++
	}
	return n, nil
}

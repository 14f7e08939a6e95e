package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/revelaction/semalign/sense"
	"github.com/revelaction/semalign/storage"
	"github.com/revelaction/semalign/storage/filesystem"
	"github.com/revelaction/semalign/storage/sqlite/zombiezen"
)

const (
	FormatJSONL  = "jsonl"
	FormatTSV    = "tsv"
	FormatSQLite = "sqlite"
)

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// sinkFormat returns format, or the format implied by the store path.
func sinkFormat(format, path string) string {
	if format != "" {
		return format
	}
	if isSQLite(path) {
		return FormatSQLite
	}
	return FormatJSONL
}

func NewRecordRepository(p *Pool, path string) (storage.RecordRepository, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("repository not found: %s", path)
	}

	if info.IsDir() {
		return filesystem.NewDocStore(path)
	}

	pool, err := p.Open(path)
	if err != nil {
		return nil, err
	}
	return zombiezen.NewDocStore(pool), nil
}

// NewSink returns the writer of a conversion run and the function releasing
// it. SQLite stores record the run id of each doc.
func NewSink(p *Pool, opts ConvertOptions, runId string) (storage.RecordWriter, func() error, error) {
	noop := func() error { return nil }

	switch sinkFormat(opts.Format, opts.Store) {
	case FormatJSONL:
		ds, err := filesystem.NewDocStore(opts.Store)
		if err != nil {
			return nil, nil, err
		}
		ds.Overwrite = opts.Overwrite
		return ds, noop, nil

	case FormatTSV:
		ts, err := filesystem.NewTSVStore(opts.Store, opts.Name)
		if err != nil {
			return nil, nil, err
		}
		return ts, ts.Close, nil

	case FormatSQLite:
		pool, err := p.Open(opts.Store)
		if err != nil {
			return nil, nil, err
		}
		if err := zombiezen.CreateSchemas(pool, zombiezen.RecordsSchema); err != nil {
			return nil, nil, fmt.Errorf("failed to create records tables: %w", err)
		}
		ds := zombiezen.NewDocStore(pool)
		ds.RunId = runId
		return ds, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown store format %q", opts.Format)
}

// NewInventory opens a sense inventory: a SQLite file with a senses table or
// a tab separated key, id file.
func NewInventory(p *Pool, path string) (sense.Inventory, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("inventory not found: %s", path)
	}

	if !isSQLite(path) {
		return filesystem.LoadInventory(path)
	}

	pool, err := p.Open(path)
	if err != nil {
		return nil, err
	}
	return zombiezen.NewInventory(pool), nil
}

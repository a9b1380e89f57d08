package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"
)

type DB struct {
	st      storage
	logger  *slog.Logger
	verbose bool
	now     func() time.Time

	ReadCount  atomic.Uint64
	WriteCount atomic.Uint64
}

type Options struct {
	Logger    *slog.Logger
	Verbose   bool
	IsTesting bool
	MmapSize  int

	// ReadOnly opens the Bolt file with a shared lock; write transactions fail.
	ReadOnly bool

	// Now overrides the clock used for collection timestamps.
	Now func() time.Time
}

// Open opens or creates a Bolt-backed store at path.
func Open(path string, opt Options) (*DB, error) {
	bopt := new(bbolt.Options)
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 64
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}
	bopt.ReadOnly = opt.ReadOnly

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return newDB(newBoltStorage(bdb), opt), nil
}

// OpenMemory returns a transient store kept entirely in memory.
func OpenMemory(opt Options) *DB {
	return newDB(newMemStorage(), opt)
}

func newDB(st storage, opt Options) *DB {
	db := &DB{
		st:      st,
		logger:  opt.Logger,
		verbose: opt.Verbose,
		now:     opt.Now,
	}
	if db.logger == nil {
		db.logger = slog.Default()
	}
	if db.now == nil {
		db.now = time.Now
	}
	return db
}

func (db *DB) Close() error {
	if err := db.st.Close(); err != nil {
		return fmt.Errorf("store: closing: %w", err)
	}
	return nil
}

func (db *DB) debugf(op, coll, id string, attrs ...slog.Attr) {
	if !db.verbose {
		return
	}
	attrs = append(attrs, slog.String("collection", coll))
	if id != "" {
		attrs = append(attrs, slog.String("id", id))
	}
	db.logger.LogAttrs(context.Background(), slog.LevelDebug, op, attrs...)
}

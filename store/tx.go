package store

import (
	"fmt"
	"time"

	"github.com/andreyvit/edbexport"
)

type Tx struct {
	db      *DB
	stx     storageTx
	written bool
	started time.Time
}

func (tx *Tx) DB() *DB {
	return tx.db
}

func (tx *Tx) IsWritable() bool {
	return tx.stx.Writable()
}

func (tx *Tx) markWritten() {
	tx.written = true
}

func (tx *Tx) now() time.Time {
	return tx.started
}

func (tx *Tx) checkWritable() {
	if !tx.stx.Writable() {
		panic("store: write in a read-only transaction")
	}
}

func (db *DB) begin(writable bool) (*Tx, error) {
	stx, err := db.st.BeginTx(writable)
	if err != nil {
		return nil, fmt.Errorf("store: begin: %w", err)
	}
	if writable {
		db.WriteCount.Add(1)
	} else {
		db.ReadCount.Add(1)
	}
	return &Tx{db: db, stx: stx, started: db.now()}, nil
}

// Read runs f in a read-only transaction. A panic inside f is returned as
// *edbexport.Panic.
func (db *DB) Read(f func(tx *Tx) error) error {
	tx, err := db.begin(false)
	if err != nil {
		return err
	}
	defer tx.stx.Rollback()
	return edbexport.Safely(func() error {
		return f(tx)
	})
}

// Write runs f in a writable transaction, committing if it returns nil and
// rolling back on an error or panic.
func (db *DB) Write(f func(tx *Tx) error) error {
	tx, err := db.begin(true)
	if err != nil {
		return err
	}
	defer tx.stx.Rollback()

	err = edbexport.Safely(func() error {
		return f(tx)
	})
	if err != nil {
		return err
	}
	if !tx.written {
		return nil
	}
	if err := tx.stx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

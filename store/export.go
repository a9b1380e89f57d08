package store

import (
	"context"
	"log/slog"

	"github.com/andreyvit/edbexport"
)

// Export drives sink over the whole store inside one read transaction, so
// the output is a consistent snapshot.
func (db *DB) Export(ctx context.Context, sink edbexport.Sink) error {
	return db.Read(func(tx *Tx) error {
		return tx.Export(ctx, sink)
	})
}

// Export calls sink in protocol order: collections by name, each with its
// index declarations followed by its objects in id order. Records that fail
// to decode are logged and reported through ReportException, and the pass
// continues. Errors returned by the sink, including edbexport.ErrStop, and
// context cancellation end the pass and are returned as is.
func (tx *Tx) Export(ctx context.Context, sink edbexport.Sink) error {
	if err := sink.BeginExport(); err != nil {
		return err
	}
	for _, name := range tx.Collections() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !sink.CanExportCollection(name) {
			tx.db.debugf("db: EXPORT.SKIP", name, "")
			continue
		}
		if err := tx.exportCollection(ctx, sink, name); err != nil {
			return err
		}
	}
	return sink.EndExport()
}

func (tx *Tx) exportCollection(ctx context.Context, sink edbexport.Sink, name string) error {
	if err := sink.BeginCollection(name); err != nil {
		return err
	}

	indices, err := tx.Indices(name)
	if err != nil {
		tx.db.logger.LogAttrs(ctx, slog.LevelWarn, "export: cannot read collection state", slog.String("collection", name), slog.Any("err", err))
		if err := sink.ReportException(err); err != nil {
			return err
		}
	}
	for _, idx := range indices {
		if err := edbexport.ExportIndex(sink, idx); err != nil {
			return err
		}
	}

	err = tx.Scan(name, func(obj *edbexport.Object, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			tx.db.logger.LogAttrs(ctx, slog.LevelWarn, "export: skipping damaged record", slog.String("collection", name), slog.Any("err", err))
			return sink.ReportException(err)
		}
		return edbexport.ExportObject(sink, name, obj)
	})
	if err != nil {
		return err
	}
	return sink.EndCollection()
}

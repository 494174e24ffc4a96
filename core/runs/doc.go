// Package runs keeps a ledger of merges in the merge_runs table.
//
// Every merge started from the CLI or the HTTP API produces one Run row carrying the
// dataset locations, the output path (and uploaded object, if any), the number of
// passes the restart controller needed, the final schema width and the row counts.
// Failed merges are recorded too, with their error text.
//
// The ledger is optional. A Store created with a nil *gorm.DB reports Enabled() ==
// false and every call returns ErrNoDatabase, which callers log and ignore.
//
// # Usage
//
//	store := runs.NewStore(db)
//	_ = store.Migrate(ctx)
//
//	run := runs.NewRun(master, child, time.Now())
//	res, err := merger.Run(ctx, master, child, opts)
//	run.Finish(res, err, time.Now())
//	_ = store.Record(ctx, run)
package runs

// Package reconcile merges a master dataset of identity records with a child dataset of
// supplementary records into a single delimited output file.
//
// Rows are joined on a normalized identifier and child columns are merged without ever
// overwriting a populated value. When a merge discovers that it needs a column the
// output header does not have yet, the whole pass is thrown away and restarted with the
// larger header, because the header has to be written before the first row.
//
// # Architecture
//
// The package is split into small components, leaf first:
//
// 1. Normalizer: NormalizeID strips separators and left-pads master identifiers to the
//    configured width.
//
// 2. Loader: Load opens a Source (local file or object storage) and streams Records.
//    Every call re-opens the source from the beginning.
//
// 3. Schema: BuildInitialSchema seeds the output header from both headers, renaming
//    child columns that collide with master columns.
//
// 4. Match engine: one pass over the master rows, consuming children from a MatchPool
//    and placing their values with the suffix-increment rule (foo, foo__1, foo__2, ...).
//    A pass ends with a PassResult that is either stable or asks for a restart.
//
// 5. Restart controller: Merger.Run loops passes until one is stable, then appends the
//    orphan children and moves the finished file into place.
//
// # Output Safety
//
// Each attempt writes to a temporary file next to the final output. The temporary file
// is truncated on every restart and only renamed over the output path after a stable
// pass, so a failed merge never leaves a half-written file under the final name. The
// output path is also held under an exclusive file lock for the duration of the merge.
//
// # Usage Example
//
//	master := reconcile.DatasetConfig{Location: "owners.csv", IDColumn: "APN", IDCharCount: 10}
//	child := reconcile.DatasetConfig{Location: "contacts.csv", IDColumn: "APN", IDCharCount: reconcile.Mixed}
//
//	merger := reconcile.NewMerger(logger, nil)
//	result, err := merger.Run(ctx, master, child, reconcile.Options{Overwrite: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.OutputPath, result.Summary.Aligned)
package reconcile

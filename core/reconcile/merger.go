package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"sheet-reconciler/core/storage"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds restarts when Options.MaxAttempts is not set.
const DefaultMaxAttempts = 50

// Options controls a single merge.
type Options struct {
	// Overwrite replaces an existing output file for today instead of bumping the name.
	Overwrite bool

	// OutputPath overrides the derived output location.
	OutputPath string

	// MaxAttempts caps the number of passes. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// Schema seeds the output header. Names from the initial schema that it lacks are
	// appended. Seeding with a previous Result.Schema makes the merge finish in one pass.
	Schema []string

	// Now returns the time used for the output file name. Defaults to time.Now.
	Now func() time.Time
}

// Merger runs merges. It is safe to use from multiple goroutines as long as each merge
// writes to a different output path.
type Merger struct {
	logger *zap.Logger
	client storage.Client
}

// NewMerger creates a Merger. client is only needed for s3:// dataset locations and may be nil.
func NewMerger(logger *zap.Logger, client storage.Client) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{logger: logger, client: client}
}

// LockPath returns the lock file guarding output: a hidden file beside it.
func LockPath(output string) string {
	return filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".lock")
}

// Merge merges child into master with default options and returns the output path.
func Merge(ctx context.Context, master, child DatasetConfig, overwrite bool) (string, error) {
	res, err := NewMerger(nil, nil).Run(ctx, master, child, Options{Overwrite: overwrite})
	if err != nil {
		return "", err
	}
	return res.OutputPath, nil
}

// Run merges child into master until a pass completes without growing the schema.
// Every restart discards the output written so far, reloads both datasets, and runs the
// whole pass again with the enlarged schema.
func (m *Merger) Run(ctx context.Context, master, child DatasetConfig, opts Options) (*Result, error) {
	start := time.Now()

	if err := master.Validate(); err != nil {
		return nil, fmt.Errorf("master config: %w", err)
	}
	if err := child.Validate(); err != nil {
		return nil, fmt.Errorf("child config: %w", err)
	}

	masterSrc, err := ResolveSource(master.Location, m.client)
	if err != nil {
		return nil, fmt.Errorf("master config: %w", err)
	}
	childSrc, err := ResolveSource(child.Location, m.client)
	if err != nil {
		return nil, fmt.Errorf("child config: %w", err)
	}

	masterFields, err := m.headerOf(ctx, masterSrc, master.IDColumn)
	if err != nil {
		return nil, fmt.Errorf("master config: %w", err)
	}
	childFields, err := m.headerOf(ctx, childSrc, child.IDColumn)
	if err != nil {
		return nil, fmt.Errorf("child config: %w", err)
	}

	schema, childNames := BuildInitialSchema(masterFields, childFields, child.IDColumn)
	if len(opts.Schema) > 0 {
		seeded := NewSchema(opts.Schema...)
		seeded.Append(schema.names...)
		schema = seeded
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	outPath := opts.OutputPath
	if outPath == "" {
		outPath = OutputPath(master.Location, opts.Overwrite, now())
	}

	// The lock file stays on disk; unlinking it would let two merges lock different inodes.
	lock := flock.New(LockPath(outPath))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, &WriteError{Path: outPath, Err: fmt.Errorf("acquire lock: %w", err)}
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, outPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			m.logger.Warn("failed to release output lock", zap.String("path", outPath), zap.Error(err))
		}
	}()

	out, err := createAttemptFile(outPath)
	if err != nil {
		return nil, err
	}
	defer out.discard()

	p := pairing{
		masterID:    master.IDColumn,
		masterWidth: master.IDCharCount,
		childID:     child.IDColumn,
	}

	m.logger.Info("Writing merged output", zap.String("path", outPath))

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > maxAttempts {
			return nil, fmt.Errorf("%w after %d attempts (%d fields)", ErrUnstableSchema, maxAttempts, schema.Len())
		}

		res, field, err := m.attempt(ctx, masterSrc, childSrc, childNames, schema, p, out)
		if err != nil {
			return nil, err
		}
		if field != "" {
			schema.Append(field)
			m.logger.Info("Output schema grew, starting over",
				zap.String("field", field),
				zap.Int("attempt", attempt),
				zap.Int("fields", schema.Len()),
			)
			continue
		}

		if err := out.commit(); err != nil {
			return nil, err
		}

		res.OutputPath = outPath
		res.Schema = schema.Names()
		res.Attempts = attempt
		res.Duration = time.Since(start)

		m.logger.Info("Merge complete",
			zap.String("path", outPath),
			zap.Int("attempts", attempt),
			zap.Int("aligned", res.Summary.Aligned),
			zap.Int("orphans", res.Summary.Orphans),
			zap.Int("rejected", res.Summary.Rejected),
			zap.Int("missing_id", res.Summary.MissingID),
		)
		for _, id := range res.RejectedIDs {
			m.logger.Debug("Child row skipped due to ID length mismatch", zap.String("id", id))
		}
		return res, nil
	}
}

// attempt runs one full pass with fresh datasets and a fresh pool. A non-empty field
// means the schema must grow and the output written by this attempt is void.
func (m *Merger) attempt(ctx context.Context, masterSrc, childSrc Source, childNames []string, schema *Schema, p pairing, out *attemptFile) (*Result, string, error) {
	children, err := m.loadChildren(ctx, childSrc, childNames)
	if err != nil {
		return nil, "", err
	}
	pool, rejected, missing := newMatchPool(children, p.childID, p.masterWidth)

	m.logger.Info("Child rows loaded",
		zap.Int("total", len(children)),
		zap.Int("proper_id_length", pool.Len()),
		zap.Int("incorrect_id_length", len(rejected)),
		zap.Int("missing_id", missing),
	)

	if err := out.reset(schema); err != nil {
		return nil, "", err
	}

	masterDS, err := Load(ctx, masterSrc)
	if err != nil {
		return nil, "", err
	}
	defer masterDS.Close()

	pass, err := mergePass(masterDS, pool, schema, p, out.write, m.logger)
	if err != nil {
		return nil, "", err
	}
	if pass.Outcome == OutcomeRestart {
		return nil, pass.Field, nil
	}

	orphans := emitOrphans(pool.Remaining(), schema)
	for _, row := range orphans {
		if err := out.write(row); err != nil {
			return nil, "", err
		}
	}

	return &Result{
		Summary: Summary{
			MasterRows: pass.MasterRows,
			ChildRows:  len(children),
			Eligible:   len(children) - len(rejected) - missing,
			Rejected:   len(rejected),
			MissingID:  missing,
			Aligned:    pass.Aligned,
			Orphans:    len(orphans),
			OutputRows: pass.MasterRows + len(orphans),
		},
		RejectedIDs: rejected,
	}, "", nil
}

// loadChildren reads the whole child dataset under its reconciled field names.
func (m *Merger) loadChildren(ctx context.Context, src Source, names []string) ([]Record, error) {
	ds, err := Load(ctx, src)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	if err := ds.Rename(names); err != nil {
		return nil, err
	}

	var children []Record
	for {
		rec, err := ds.Next()
		if errors.Is(err, io.EOF) {
			return children, nil
		}
		if err != nil {
			return nil, err
		}
		children = append(children, rec)
	}
}

// headerOf opens src once to validate it and returns its field names.
func (m *Merger) headerOf(ctx context.Context, src Source, idColumn string) ([]string, error) {
	ds, err := Load(ctx, src)
	if err != nil {
		if errors.Is(err, ErrDatasetNotFound) {
			return nil, &ConfigError{Key: "location", Msg: "not a file", Err: err}
		}
		return nil, err
	}
	defer ds.Close()

	fields := ds.Fields()
	if !slices.Contains(fields, idColumn) {
		return nil, &ConfigError{Key: "id_column", Msg: fmt.Sprintf("%q not found in %s", idColumn, src.Name())}
	}
	return fields, nil
}

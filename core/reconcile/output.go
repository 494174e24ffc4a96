package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// OutputPath derives the merged file name from the master location:
// <dir>/<stem>_<YYYYMMDD>.csv. Unless overwrite is set, an existing file bumps the
// name to <stem>_<YYYYMMDD>_1.csv, _2, and so on. Object locations write to the
// working directory.
func OutputPath(location string, overwrite bool, now time.Time) string {
	base := expandHome(location)
	if strings.HasPrefix(location, objectScheme) {
		base = path.Base(location)
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	date := now.Format("20060102")

	out := fmt.Sprintf("%s_%s.csv", stem, date)
	if overwrite {
		return out
	}
	for i := 1; fileExists(out); i++ {
		out = fmt.Sprintf("%s_%s_%d.csv", stem, date, i)
	}
	return out
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// attemptFile is the in-progress output of a merge. It lives in a temporary file beside
// the final path, is truncated at the start of every attempt, and only replaces the
// final path on commit.
type attemptFile struct {
	final  string
	f      *os.File
	w      *csv.Writer
	schema *Schema
}

func createAttemptFile(final string) (*attemptFile, error) {
	f, err := os.CreateTemp(filepath.Dir(final), "."+filepath.Base(final)+".*.tmp")
	if err != nil {
		return nil, &WriteError{Path: final, Err: err}
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, &WriteError{Path: final, Err: err}
	}
	return &attemptFile{final: final, f: f}, nil
}

// reset truncates the file and writes the header for schema.
func (a *attemptFile) reset(schema *Schema) error {
	if err := a.f.Truncate(0); err != nil {
		return &WriteError{Path: a.f.Name(), Err: err}
	}
	if _, err := a.f.Seek(0, io.SeekStart); err != nil {
		return &WriteError{Path: a.f.Name(), Err: err}
	}
	a.w = csv.NewWriter(a.f)
	a.schema = schema
	if err := a.w.Write(schema.Names()); err != nil {
		return &WriteError{Path: a.f.Name(), Err: err}
	}
	return nil
}

func (a *attemptFile) write(rec OutputRecord) error {
	if err := a.w.Write(rec.Row(a.schema)); err != nil {
		return &WriteError{Path: a.f.Name(), Err: err}
	}
	return nil
}

// commit flushes the attempt and renames it over the final path.
func (a *attemptFile) commit() error {
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		return &WriteError{Path: a.f.Name(), Err: err}
	}
	if err := a.f.Sync(); err != nil {
		return &WriteError{Path: a.f.Name(), Err: err}
	}
	tmp := a.f.Name()
	if err := a.f.Close(); err != nil {
		return &WriteError{Path: tmp, Err: err}
	}
	a.f = nil
	if err := os.Rename(tmp, a.final); err != nil {
		os.Remove(tmp)
		return &WriteError{Path: a.final, Err: err}
	}
	return nil
}

// discard removes an uncommitted attempt. It is a no-op after commit.
func (a *attemptFile) discard() {
	if a.f == nil {
		return
	}
	a.f.Close()
	os.Remove(a.f.Name())
	a.f = nil
}


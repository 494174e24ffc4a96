package reconcile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Dataset is a single-pass stream of records from one Source.
// Call Load again to read the dataset from the beginning.
type Dataset struct {
	name   string
	fields []string
	reader *csv.Reader
	closer io.Closer
	line   int
}

// Load opens src and reads its header row.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(rc)
	r.Comma = delimiterFor(src.Name())
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		rc.Close()
		if errors.Is(err, io.EOF) {
			return nil, &ConfigError{Key: "location", Msg: fmt.Sprintf("%s has no header row", src.Name())}
		}
		return nil, fmt.Errorf("read header of %s: %w", src.Name(), err)
	}

	fields := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := seen[name]; dup {
			rc.Close()
			return nil, &ConfigError{Key: "location", Msg: fmt.Sprintf("%s has duplicate field %q", src.Name(), name)}
		}
		seen[name] = struct{}{}
		fields[i] = name
	}

	return &Dataset{
		name:   src.Name(),
		fields: fields,
		reader: r,
		closer: rc,
		line:   1,
	}, nil
}

// Name returns the source location.
func (d *Dataset) Name() string {
	return d.name
}

// Fields returns the header field names in order.
func (d *Dataset) Fields() []string {
	return d.fields
}

// Rename replaces the field names used for subsequent records.
func (d *Dataset) Rename(fields []string) error {
	if len(fields) != len(d.fields) {
		return fmt.Errorf("rename %s: got %d names for %d fields", d.name, len(fields), len(d.fields))
	}
	d.fields = fields
	return nil
}

// Next returns the next record, or io.EOF once the dataset is exhausted.
func (d *Dataset) Next() (Record, error) {
	row, err := d.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("read %s: %w", d.name, err)
	}
	d.line++
	if len(row) > len(d.fields) {
		return Record{}, fmt.Errorf("%s line %d: %w (%d > %d)", d.name, d.line, ErrRaggedRow, len(row), len(d.fields))
	}
	return NewRecord(d.fields, row), nil
}

// Close releases the underlying reader.
func (d *Dataset) Close() error {
	return d.closer.Close()
}

// delimiterFor picks the field separator from the location's extension.
func delimiterFor(name string) rune {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv", ".tab":
		return '\t'
	default:
		return ','
	}
}

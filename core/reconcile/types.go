package reconcile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sheet-reconciler/core/utils"
)

// MixedWidthLiteral is the configuration value that disables identifier width checks.
const MixedWidthLiteral = "mixed"

// IDWidth is the configured identifier width of a dataset.
// The zero value means the width was never configured and fails validation.
type IDWidth int

const (
	// Unset is the IDWidth of a config that omitted id_char_count.
	Unset IDWidth = 0
	// Mixed is the IDWidth for datasets without a fixed identifier width.
	Mixed IDWidth = -1
)

// Mixed reports whether the width is unenforced.
func (w IDWidth) Mixed() bool {
	return w < 0
}

// IsSet reports whether a width, numeric or mixed, was configured.
func (w IDWidth) IsSet() bool {
	return w != Unset
}

// String returns the configuration form of the width.
func (w IDWidth) String() string {
	switch {
	case w.Mixed():
		return MixedWidthLiteral
	case !w.IsSet():
		return "unset"
	}
	return strconv.Itoa(int(w))
}

// MarshalText implements encoding.TextMarshaler.
func (w IDWidth) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string, or "mixed".
func (w *IDWidth) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := ParseIDWidth(raw)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseIDWidth converts a configuration value into an IDWidth.
// Integers and numeric strings must be positive; the literal "mixed" yields Mixed.
func ParseIDWidth(v any) (IDWidth, error) {
	switch val := v.(type) {
	case nil:
		return Unset, &ConfigError{Key: "id_char_count", Msg: "value is missing"}
	case IDWidth:
		return val, nil
	case int, int64, int32, uint, uint64, uint32, float64, float32:
		n := utils.ToInt(val)
		if n <= 0 {
			return Unset, &ConfigError{Key: "id_char_count", Msg: fmt.Sprintf("width must be positive, got %v", val)}
		}
		return IDWidth(n), nil
	}

	s := strings.TrimSpace(utils.ToString(v))
	if strings.EqualFold(s, MixedWidthLiteral) {
		return Mixed, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Unset, &ConfigError{Key: "id_char_count", Msg: fmt.Sprintf("unable to coerce %q to an integer", s), Err: err}
	}
	if n <= 0 {
		return Unset, &ConfigError{Key: "id_char_count", Msg: fmt.Sprintf("width must be positive, got %d", n)}
	}
	return IDWidth(n), nil
}

// DatasetConfig describes one input dataset.
type DatasetConfig struct {
	// Location is a local path or an s3://bucket/object URL.
	Location string `json:"location" mapstructure:"location"`

	// IDColumn is the header name holding the join key.
	IDColumn string `json:"id_column" mapstructure:"id_column"`

	// IDCharCount is the fixed identifier width, or Mixed. Unset fails Validate.
	IDCharCount IDWidth `json:"id_char_count" mapstructure:"id_char_count"`
}

// Validate checks that the required keys are present.
func (c DatasetConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Location) == "" {
		errs = append(errs, &ConfigError{Key: "location", Msg: "required key is missing"})
	}
	if strings.TrimSpace(c.IDColumn) == "" {
		errs = append(errs, &ConfigError{Key: "id_column", Msg: "required key is missing"})
	}
	if !c.IDCharCount.IsSet() {
		errs = append(errs, &ConfigError{Key: "id_char_count", Msg: "required key is missing"})
	}
	return errors.Join(errs...)
}

// Record is one row of a dataset: an ordered list of field names and their values.
type Record struct {
	fields []string
	values map[string]string
}

// NewRecord builds a record from a header and a row of values.
// Missing trailing values are treated as empty strings.
func NewRecord(fields []string, row []string) Record {
	values := make(map[string]string, len(fields))
	for i, name := range fields {
		if i < len(row) {
			values[name] = row[i]
		} else {
			values[name] = ""
		}
	}
	return Record{fields: fields, values: values}
}

// Fields returns the record's field names in header order.
func (r Record) Fields() []string {
	return r.fields
}

// Get returns the value of a field, or "" when the field is absent.
func (r Record) Get(name string) string {
	return r.values[name]
}

// Has reports whether the record carries the named field.
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Summary holds the counts reported after a merge.
type Summary struct {
	// MasterRows is the number of master records written.
	MasterRows int `json:"master_rows"`

	// ChildRows is the number of child records read.
	ChildRows int `json:"child_rows"`

	// Eligible counts child records whose identifier width matched the master width.
	Eligible int `json:"eligible"`

	// Rejected counts child records filtered out by identifier width.
	Rejected int `json:"rejected"`

	// MissingID counts child records whose identifier is empty after normalization.
	MissingID int `json:"missing_id"`

	// Aligned counts child records merged into a master row.
	Aligned int `json:"aligned"`

	// Orphans counts unmatched child records appended after the master rows.
	Orphans int `json:"orphans"`

	// OutputRows is MasterRows + Orphans.
	OutputRows int `json:"output_rows"`
}

// Result describes a completed merge.
type Result struct {
	// OutputPath is where the merged file was written.
	OutputPath string `json:"output_path"`

	// Schema is the final, stable output header.
	Schema []string `json:"schema"`

	// Attempts is the number of passes run, including the stable one.
	Attempts int `json:"attempts"`

	// Summary provides aggregate counts of the stable pass.
	Summary Summary `json:"summary"`

	// RejectedIDs lists raw child identifiers dropped by the width filter.
	RejectedIDs []string `json:"rejected_ids"`

	// Duration is the wall time of the whole merge.
	Duration time.Duration `json:"duration"`
}

// Config holds the merge section of the application configuration.
type Config struct {
	// ConfigDir is where named dataset configs are looked up.
	ConfigDir string `mapstructure:"config_dir" default:"config"`
	// MaxAttempts bounds the number of restarts before giving up.
	MaxAttempts int `mapstructure:"max_attempts" default:"50"`
	// Upload enables uploading the merged file to object storage.
	Upload bool `mapstructure:"upload" default:"false"`
	// UploadPrefix is the object prefix for uploaded outputs.
	UploadPrefix string `mapstructure:"upload_prefix" default:"merged"`
}

package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrDatasetNotFound is returned when a dataset location does not resolve to a readable file.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrUnstableSchema is returned when the output schema keeps growing past Options.MaxAttempts.
	ErrUnstableSchema = errors.New("output schema did not stabilize")

	// ErrOutputLocked is returned when another merge holds the output path.
	ErrOutputLocked = errors.New("output file is locked by another merge")

	// ErrRaggedRow is returned when a row has more values than its header has fields.
	ErrRaggedRow = errors.New("row has more values than header fields")
)

// ConfigError reports an invalid or incomplete dataset configuration.
// It is returned before any merge work starts.
type ConfigError struct {
	Key string
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config %s: %s", e.Key, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// WriteError reports that the output could not be written.
// Any file left at Path by the failed attempt must not be treated as a result.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

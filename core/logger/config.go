package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum level written (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the encoding of log entries (json, console).
	Format string `mapstructure:"format" default:"console"`
}

package database

// Config holds configuration for the database connection.
type Config struct {
	// Enabled turns on the merge run ledger.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name.
	Name string `mapstructure:"name" default:"reconciler"`
	// TimeoutSeconds bounds connection setup, reads, writes and the initial ping.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
}

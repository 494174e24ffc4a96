// Package database handles the MySQL connection behind the merge run ledger.
//
// It wraps GORM (Go Object Relational Mapping) and builds the go-sql-driver/mysql
// DSN from the application's configuration, including the connection, read and write
// timeouts.
//
// # Connect
//
// Connect opens the pool and pings the server within TimeoutSeconds. The ledger is
// optional: the merge command and the HTTP server log a warning and keep merging when
// Connect fails.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Run ledger disabled", zap.Error(err))
//	}
package database

package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Host:           "127.0.0.1",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "reconciler",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 3307, User: "merge", Password: "p@ss:word", Name: "reconciler", TimeoutSeconds: 7}

	dsn := DSN(cfg)
	assert.Contains(t, dsn, "merge:p%40ss%3Aword@tcp(db:3307)/reconciler?")
	assert.Contains(t, dsn, "timeout=7s")
	assert.Contains(t, dsn, "parseTime=True")
}

func TestTimeoutOf(t *testing.T) {
	assert.Equal(t, 5*time.Second, timeoutOf(Config{}))
	assert.Equal(t, 2*time.Second, timeoutOf(Config{TimeoutSeconds: 2}))
}

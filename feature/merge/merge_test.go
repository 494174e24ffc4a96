package merge

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sheet-reconciler/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func writeCSV(t *testing.T, dir, name string, rows ...[]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, f.Close())
	return path
}

// fixture writes a master and a child that merge in two passes.
func fixture(t *testing.T) (master, child reconcile.DatasetConfig, dir string) {
	t.Helper()
	dir = t.TempDir()
	m := writeCSV(t, dir, "owners.csv",
		[]string{"id", "name"},
		[]string{"1", "Alice"},
	)
	c := writeCSV(t, dir, "contacts.csv",
		[]string{"id", "phone"},
		[]string{"001", "111"},
		[]string{"001", "222"},
	)
	return reconcile.DatasetConfig{Location: m, IDColumn: "id", IDCharCount: 3},
		reconcile.DatasetConfig{Location: c, IDColumn: "id", IDCharCount: 3},
		dir
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
}

package merge

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/runs"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, store *runs.Store) *fiber.App {
	app := fiber.New()
	handler := NewHandler(newTestService(nil, store, Options{}))
	handler.RegisterRoutes(app)
	return app
}

func postMerge(t *testing.T, app *fiber.App, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/merge", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandleMerge(t *testing.T) {
	master, child, _ := fixture(t)
	app := setupTestApp(t, nil)

	status, body := postMerge(t, app, Request{Master: master, Child: child})

	assert.Equal(t, 200, status)
	assert.Equal(t, float64(2), body["attempts"])
	assert.Contains(t, body["output_path"], "owners_20261019.csv")
	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["aligned"])
}

func TestHandleMerge_WidthAsString(t *testing.T) {
	master, child, _ := fixture(t)
	app := setupTestApp(t, nil)

	status, _ := postMerge(t, app, map[string]any{
		"master": map[string]any{"location": master.Location, "id_column": "id", "id_char_count": "3"},
		"child":  map[string]any{"location": child.Location, "id_column": "id", "id_char_count": reconcile.MixedWidthLiteral},
	})
	assert.Equal(t, 200, status)
}

func TestHandleMerge_ConfigError(t *testing.T) {
	master, child, _ := fixture(t)
	child.IDColumn = "parcel"
	app := setupTestApp(t, nil)

	status, body := postMerge(t, app, Request{Master: master, Child: child})

	assert.Equal(t, 400, status)
	assert.Contains(t, body["error"], "id_column")
}

func TestHandleMerge_MissingWidth(t *testing.T) {
	master, child, _ := fixture(t)
	app := setupTestApp(t, nil)

	status, body := postMerge(t, app, map[string]any{
		"master": map[string]any{"location": master.Location, "id_column": "id"},
		"child":  map[string]any{"location": child.Location, "id_column": "id", "id_char_count": 3},
	})

	assert.Equal(t, 400, status)
	assert.Contains(t, body["error"], "id_char_count")
}

func TestHandleMerge_BadBody(t *testing.T) {
	app := setupTestApp(t, nil)

	req := httptest.NewRequest("POST", "/merge", strings.NewReader(`{"master": {"id_char_count": -2}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleMerge_Locked(t *testing.T) {
	master, child, dir := fixture(t)
	out := dir + "/held.csv"

	lock := flock.New(reconcile.LockPath(out))
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { lock.Unlock() })

	app := setupTestApp(t, nil)
	status, _ := postMerge(t, app, Request{Master: master, Child: child, OutputPath: out})
	assert.Equal(t, 409, status)
}

func TestHandleListRuns(t *testing.T) {
	t.Run("NoDatabase", func(t *testing.T) {
		app := setupTestApp(t, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/merge/runs", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})

	t.Run("Listed", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		rows := sqlmock.NewRows([]string{"id", "master_location", "child_location", "status"}).
			AddRow("run-1", "owners.csv", "contacts.csv", runs.StatusSucceeded)
		sqlMock.ExpectQuery("SELECT \\* FROM `merge_runs`").WillReturnRows(rows)

		app := setupTestApp(t, runs.NewStore(db))
		resp, err := app.Test(httptest.NewRequest("GET", "/merge/runs?limit=5", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.Equal(t, "run-1", body[0]["id"])
	})

	t.Run("QueryFails", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)

		app := setupTestApp(t, runs.NewStore(db))
		resp, err := app.Test(httptest.NewRequest("GET", "/merge/runs", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}

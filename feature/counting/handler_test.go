package counting_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"inventory-counter/core/database"
	"inventory-counter/core/realtime"
	"inventory-counter/core/storage/mocks"
	"inventory-counter/core/tasks"
	"inventory-counter/feature/counting"
	"inventory-counter/feature/counting/models"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(t *testing.T) (*fiber.App, *counting.Feature, *counting.Store) {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	hub := realtime.NewHub(logger)
	runner := tasks.NewRunner(logger, nil)

	feature := counting.NewFeature(db, new(mocks.Client), "snapshots", nil,
		counting.ImportConfig{Mode: "csv"}, runner, hub, logger)

	store := counting.NewStore(db)
	require.NoError(t, store.Migrate())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, feature, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestHandleCreateSession(t *testing.T) {
	app, _, _ := setupApp(t)

	status, body := doJSON(t, app, "POST", "/sessions", map[string]any{"id": "CNT-001"})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "success", body["status"])

	// Duplicate id is rejected.
	status, body = doJSON(t, app, "POST", "/sessions", map[string]any{"id": "CNT-001"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "error", body["status"])
}

func TestHandleCreateSession_BadMode(t *testing.T) {
	app, _, _ := setupApp(t)

	status, _ := doJSON(t, app, "POST", "/sessions",
		map[string]any{"id": "CNT-001", "qty_calc_mode": "bogus"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleGetSession_NotFound(t *testing.T) {
	app, _, _ := setupApp(t)

	status, body := doJSON(t, app, "GET", "/sessions/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "error", body["status"])
}

func TestHandleScan(t *testing.T) {
	app, _, _ := setupApp(t)

	status, _ := doJSON(t, app, "POST", "/sessions", map[string]any{"id": "CNT-001"})
	require.Equal(t, fiber.StatusCreated, status)

	status, body := doJSON(t, app, "POST", "/sessions/CNT-001/scan",
		map[string]any{"code": "X1", "increment": 3})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "success", body["status"])

	items, ok := body["physical_items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "X1", first["code"])
	assert.Equal(t, float64(3), first["qty"])
}

func TestHandleScan_MissingCode(t *testing.T) {
	app, _, _ := setupApp(t)

	status, _ := doJSON(t, app, "POST", "/sessions/CNT-001/scan", map[string]any{"code": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleReconcileLifecycle(t *testing.T) {
	app, feature, _ := setupApp(t)
	ctx := context.Background()

	status, _ := doJSON(t, app, "POST", "/sessions", map[string]any{"id": "CNT-001"})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = doJSON(t, app, "POST", "/sessions/CNT-001/scan", map[string]any{"code": "X1", "increment": 2})
	require.Equal(t, fiber.StatusOK, status)

	// Run synchronously here; the job path is covered by the runner tests.
	require.NoError(t, feature.Service().Reconcile(ctx, "CNT-001"))

	status, body := doJSON(t, app, "GET", "/sessions/CNT-001", nil)
	require.Equal(t, fiber.StatusOK, status)
	session := body["session"].(map[string]any)
	diffs := session["difference_items"].([]any)
	require.Len(t, diffs, 1)
	row := diffs[0].(map[string]any)
	assert.Equal(t, "X1", row["item_code"])
	assert.Equal(t, models.ReasonMissingInVirtual, row["difference_reason"])

	// Submit is blocked while the difference is unconfirmed.
	status, _ = doJSON(t, app, "POST", "/sessions/CNT-001/submit", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "PATCH", "/sessions/CNT-001/differences/X1",
		map[string]any{"confirmed": true})
	require.Equal(t, fiber.StatusOK, status)

	status, body = doJSON(t, app, "POST", "/sessions/CNT-001/submit", nil)
	assert.Equal(t, fiber.StatusOK, status)
	session = body["session"].(map[string]any)
	assert.Equal(t, models.StatusSubmitted, session["status"])

	// Submitting twice fails.
	status, _ = doJSON(t, app, "POST", "/sessions/CNT-001/submit", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleConfirmDifference_UnknownCode(t *testing.T) {
	app, _, _ := setupApp(t)

	status, _ := doJSON(t, app, "POST", "/sessions", map[string]any{"id": "CNT-001"})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = doJSON(t, app, "PATCH", "/sessions/CNT-001/differences/NOPE",
		map[string]any{"confirmed": true})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleSetSerial(t *testing.T) {
	app, feature, store := setupApp(t)
	ctx := context.Background()

	status, _ := doJSON(t, app, "POST", "/sessions", map[string]any{"id": "CNT-001"})
	require.Equal(t, fiber.StatusCreated, status)

	session, err := feature.Service().GetSession(ctx, "CNT-001")
	require.NoError(t, err)
	session.SerialNumbers = []models.DifferenceSerial{
		{Product: "X1", SerialNumber: "SN1", ToDo: models.ToDoNone},
	}
	require.NoError(t, store.Save(ctx, session))

	status, body := doJSON(t, app, "PATCH", "/sessions/CNT-001/serials",
		map[string]any{"product": "X1", "serial_number": "SN1", "to_do": models.ToDoRemoveAdd})
	require.Equal(t, fiber.StatusOK, status)
	updated := body["session"].(map[string]any)
	serials := updated["serial_numbers"].([]any)
	require.Len(t, serials, 1)
	assert.Equal(t, models.ToDoRemoveAdd, serials[0].(map[string]any)["to_do"])

	// Unknown flag value.
	status, _ = doJSON(t, app, "PATCH", "/sessions/CNT-001/serials",
		map[string]any{"product": "X1", "serial_number": "SN1", "to_do": "explode"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleListSnapshots(t *testing.T) {
	logger := zap.NewNop()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "virtual-2026-08-01.csv"}
	ch <- minio.ObjectInfo{Key: "virtual-2026-08-15.csv"}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "snapshots", mock.Anything).
		Return((<-chan minio.ObjectInfo)(ch))

	feature := counting.NewFeature(db, client, "snapshots", nil,
		counting.ImportConfig{Mode: "csv"}, tasks.NewRunner(logger, nil),
		realtime.NewHub(logger), logger)
	store := counting.NewStore(db)
	require.NoError(t, store.Migrate())

	app := fiber.New()
	require.NoError(t, feature.Load(app))

	status, body := doJSON(t, app, "GET", "/snapshots", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t,
		[]any{"virtual-2026-08-01.csv", "virtual-2026-08-15.csv"},
		body["snapshots"])
	client.AssertExpectations(t)
}

package inventory

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"inventory-sync/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T, dbName string) (*fiber.App, *mocks.Client, *gorm.DB) {
	app := fiber.New()
	client := new(mocks.Client)
	db := setupInventoryDB(t, dbName)
	svc := newTestService(db, client, "strict")
	handler := NewHandler(svc)
	handler.RegisterRoutes(app)
	return app, client, db
}

func TestHandleTrigger(t *testing.T) {
	t.Run("Devices", func(t *testing.T) {
		app, client, db := setupTestApp(t, "handler_devices")
		stubObject(client, "inventory/devices.json", devicesBody, 1)

		req := httptest.NewRequest("POST", "/sync/devices", nil)
		resp, err := app.Test(req, -1)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var passes []PassStatus
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&passes))
		require.Len(t, passes, 1)
		assert.Equal(t, "devices", passes[0].Collection)
		assert.Equal(t, 2, passes[0].Created)

		var count int64
		require.NoError(t, db.Table("devices").Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})

	t.Run("All", func(t *testing.T) {
		app, client, _ := setupTestApp(t, "handler_all")
		stubObject(client, "inventory/devices.json", devicesBody, 1)
		stubObject(client, "inventory/interfaces.json", interfacesBody, 1)

		req := httptest.NewRequest("POST", "/sync/all", nil)
		resp, err := app.Test(req, -1)

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var passes []PassStatus
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&passes))
		assert.Len(t, passes, 2)
	})

	t.Run("UnknownCollection", func(t *testing.T) {
		app, _, _ := setupTestApp(t, "handler_unknown")

		req := httptest.NewRequest("POST", "/sync/nonsense", nil)
		resp, err := app.Test(req, -1)

		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body["error"], "nonsense")
	})

	t.Run("PassFailure", func(t *testing.T) {
		app, client, _ := setupTestApp(t, "handler_failure")
		stubObject(client, "inventory/devices.json", `{"version": 9}`, 1)

		req := httptest.NewRequest("POST", "/sync/devices", nil)
		resp, err := app.Test(req, -1)

		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body["error"], "version 9")
	})
}

func TestHandleStatus(t *testing.T) {
	app, client, _ := setupTestApp(t, "handler_status")

	// Nothing has run yet.
	req := httptest.NewRequest("GET", "/sync/status", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var passes []PassStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&passes))
	assert.Empty(t, passes)

	stubObject(client, "inventory/devices.json", devicesBody, 1)
	_, err = app.Test(httptest.NewRequest("POST", "/sync/devices", nil), -1)
	require.NoError(t, err)

	resp, err = app.Test(httptest.NewRequest("GET", "/sync/status", nil), -1)
	require.NoError(t, err)

	passes = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&passes))
	require.Len(t, passes, 1)
	assert.Equal(t, "devices", passes[0].Collection)
}

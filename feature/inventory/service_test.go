package inventory

import (
	"context"
	"fmt"
	"testing"

	"inventory-sync/core/recon"
	"inventory-sync/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInventoryDB(t *testing.T, dbName string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	require.NoError(t, db.Exec(`CREATE TABLE devices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		serial_number VARCHAR(60),
		hostname VARCHAR(120),
		site VARCHAR(20),
		vendor VARCHAR(40),
		model VARCHAR(60),
		status VARCHAR(20),
		type VARCHAR(40),
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`).Error)

	require.NoError(t, db.Exec(`CREATE TABLE device_interfaces (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id INTEGER,
		device_serial VARCHAR(60),
		name VARCHAR(60),
		mac_address VARCHAR(20),
		speed_mbps INTEGER,
		enabled BOOLEAN,
		created_on DATE,
		updated_on DATE
	)`).Error)

	return db
}

// stubObject queues n one-shot snapshot responses; each carries a fresh
// reader because a body can only be consumed once.
func stubObject(client *mocks.Client, object, body string, n int) {
	for i := 0; i < n; i++ {
		client.On("GetObject", mock.Anything, "inventory", object, mock.Anything).
			Return(snapshotReader(body), nil).Once()
	}
}

func newTestService(db *gorm.DB, client *mocks.Client, policy string) *Service {
	cfg := Config{
		DevicesObject:    "inventory/devices.json",
		InterfacesObject: "inventory/interfaces.json",
		CreateAllowed:    true,
		DeleteAllowed:    true,
	}
	src := NewSource(client, "inventory", cfg)
	return NewService(src, db, zap.NewNop(), cfg, recon.Config{Policy: policy})
}

const devicesBody = `{
	"version": 1,
	"generated_at": "2026-08-01T06:00:00Z",
	"devices": [
		{"serial_number": "SN-1", "hostname": "core-1", "site": "ams1", "vendor": "juniper", "model": "qfx5120", "status": "active"},
		{"serial_number": "SN-2", "hostname": "core-2", "site": "ams1", "vendor": "arista", "model": "7050x3", "status": "active"}
	]
}`

const interfacesBody = `{
	"version": 1,
	"generated_at": "2026-08-01T06:00:00Z",
	"interfaces": [
		{"device_serial": "SN-1", "name": "xe-0/0/1", "mac_address": "aa:bb:cc:00:00:01", "speed_mbps": 10000, "enabled": true},
		{"device_serial": "SN-2", "name": "xe-0/0/1", "mac_address": "aa:bb:cc:00:00:02", "speed_mbps": 10000, "enabled": false}
	]
}`

func TestService_SyncAll(t *testing.T) {
	db := setupInventoryDB(t, "svc_sync_all")
	// A leftover interface no longer in the snapshot.
	require.NoError(t, db.Exec(
		"INSERT INTO device_interfaces (device_serial, name) VALUES ('SN-GONE', 'eth9')").Error)

	client := new(mocks.Client)
	stubObject(client, "inventory/devices.json", devicesBody, 2)
	stubObject(client, "inventory/interfaces.json", interfacesBody, 2)
	svc := newTestService(db, client, "strict")

	statuses, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, "devices", statuses[0].Collection)
	assert.Equal(t, 2, statuses[0].Created)
	assert.Equal(t, "interfaces", statuses[1].Collection)
	assert.Equal(t, 2, statuses[1].Created)
	assert.Equal(t, 1, statuses[1].Deleted)

	// Interfaces reference their device rows by resolved foreign key.
	var rows []struct {
		DeviceSerial string
		DeviceID     int64
		Serial       string
	}
	err = db.Table("device_interfaces di").
		Select("di.device_serial, di.device_id, d.serial_number as serial").
		Joins("JOIN devices d ON d.id = di.device_id").
		Find(&rows).Error
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, r.DeviceSerial, r.Serial)
	}

	// Device rows carry the bookkeeping stamps.
	var dev map[string]any
	require.NoError(t, db.Table("devices").Where("serial_number = ?", "SN-1").Take(&dev).Error)
	assert.Equal(t, "network_device", dev["type"])
	assert.NotNil(t, dev["created_at"])

	// A second full pass over identical snapshots changes nothing.
	statuses, err = svc.SyncAll(context.Background())
	require.NoError(t, err)
	for _, st := range statuses {
		assert.Zero(t, st.Created, st.Collection)
		assert.Zero(t, st.Updated, st.Collection)
		assert.Zero(t, st.Deleted, st.Collection)
		assert.Zero(t, st.Skipped, st.Collection)
	}

	client.AssertExpectations(t)
}

func TestService_SyncDevices_CompleteSnapshot(t *testing.T) {
	db := setupInventoryDB(t, "svc_complete")
	require.NoError(t, db.Exec(`INSERT INTO devices (serial_number, hostname) VALUES
		('SN-1', 'core-1'), ('SN-2', 'core-2'), ('SN-3', 'core-3')`).Error)

	body := `{
		"version": 1,
		"complete": true,
		"devices": [{"serial_number": "SN-1", "hostname": "core-1"}]
	}`
	client := new(mocks.Client)
	stubObject(client, "inventory/devices.json", body, 1)
	svc := newTestService(db, client, "strict")

	st, err := svc.SyncDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Deleted)
	assert.Zero(t, st.Created)
	assert.Zero(t, st.Updated)

	// Purged devices are retired, not removed.
	var live, retired int64
	require.NoError(t, db.Table("devices").Where("deleted_at IS NULL").Count(&live).Error)
	require.NoError(t, db.Table("devices").Where("deleted_at IS NOT NULL").Count(&retired).Error)
	assert.EqualValues(t, 1, live)
	assert.EqualValues(t, 2, retired)
}

func TestService_SyncInterfaces_UnknownDevice(t *testing.T) {
	body := `{
		"version": 1,
		"interfaces": [{"device_serial": "SN-MISSING", "name": "eth0", "mac_address": "aa:bb:cc:00:00:09", "speed_mbps": 1000, "enabled": true}]
	}`

	t.Run("StrictFails", func(t *testing.T) {
		db := setupInventoryDB(t, "svc_unknown_strict")
		client := new(mocks.Client)
		stubObject(client, "inventory/interfaces.json", body, 1)
		svc := newTestService(db, client, "strict")

		st, err := svc.SyncInterfaces(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, recon.ErrIntegrityViolation)
		assert.NotEmpty(t, st.Error)

		var count int64
		require.NoError(t, db.Table("device_interfaces").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("LenientSkips", func(t *testing.T) {
		db := setupInventoryDB(t, "svc_unknown_lenient")
		client := new(mocks.Client)
		stubObject(client, "inventory/interfaces.json", body, 1)
		svc := newTestService(db, client, "lenient")

		st, err := svc.SyncInterfaces(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, st.Skipped)
		assert.Zero(t, st.Created)

		var count int64
		require.NoError(t, db.Table("device_interfaces").Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestService_Status(t *testing.T) {
	db := setupInventoryDB(t, "svc_status")
	client := new(mocks.Client)
	stubObject(client, "inventory/devices.json", devicesBody, 1)
	stubObject(client, "inventory/interfaces.json", interfacesBody, 1)
	svc := newTestService(db, client, "strict")

	assert.Empty(t, svc.Status())

	_, err := svc.SyncAll(context.Background())
	require.NoError(t, err)

	statuses := svc.Status()
	require.Len(t, statuses, 2)
	assert.Equal(t, "devices", statuses[0].Collection)
	assert.Equal(t, "interfaces", statuses[1].Collection)
	assert.False(t, statuses[0].FinishedAt.Before(statuses[0].StartedAt))
}

func TestService_SnapshotLoadFailure(t *testing.T) {
	db := setupInventoryDB(t, "svc_bad_snapshot")
	client := new(mocks.Client)
	stubObject(client, "inventory/devices.json", `{"version": 9}`, 1)
	svc := newTestService(db, client, "strict")

	st, err := svc.SyncDevices(context.Background())
	require.Error(t, err)
	assert.Contains(t, st.Error, "version 9")

	// The failure is recorded for the status endpoint.
	statuses := svc.Status()
	require.Len(t, statuses, 1)
	assert.NotEmpty(t, statuses[0].Error)
}

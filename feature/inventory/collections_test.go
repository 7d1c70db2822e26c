package inventory

import (
	"testing"

	"inventory-sync/core/recon"
	"inventory-sync/feature/inventory/models"

	"github.com/stretchr/testify/assert"
)

func TestDeviceCollection(t *testing.T) {
	snap := &models.DeviceSnapshot{
		Version: models.SupportedSnapshotVersion,
		Devices: []models.DeviceRecord{
			{SerialNumber: "SN-1", Hostname: "core-1", Site: "ams1", Vendor: "juniper", Model: "qfx5120", Status: "active"},
			{SerialNumber: "SN-2", Hostname: "core-2", Site: "ams1", Vendor: "arista", Model: "7050x3", Status: "staged"},
		},
	}
	cfg := Config{CreateAllowed: true, DeleteAllowed: false}

	col := deviceCollection(snap, cfg)
	assert.Equal(t, models.DeviceTable, col.Table)
	assert.Equal(t, []string{"serial_number"}, col.KeyColumns)
	assert.Equal(t, models.DeviceType, col.TypeValue)
	assert.Equal(t, recon.DeleteSoft, col.DeleteMethod)
	assert.True(t, col.Strategy.CreateAllowed)
	assert.False(t, col.Strategy.DeleteAllowed)
	assert.Len(t, col.Objects, 2)
	assert.Equal(t, "core-1", col.Objects[0].Attributes["hostname"])

	// Partial snapshot: no universe, normal diff pass.
	assert.Nil(t, col.Universe)

	snap.Complete = true
	col = deviceCollection(snap, cfg)
	assert.Equal(t, []recon.Identity{"SN-1", "SN-2"}, col.Universe)
}

func TestInterfaceCollection(t *testing.T) {
	snap := &models.InterfaceSnapshot{
		Version: models.SupportedSnapshotVersion,
		Interfaces: []models.InterfaceRecord{
			{DeviceSerial: "SN-1", Name: "xe-0/0/1", MACAddress: "aa:bb:cc:dd:ee:ff", SpeedMbps: 10000, Enabled: true},
		},
	}

	col := interfaceCollection(snap, Config{CreateAllowed: true, DeleteAllowed: true})
	assert.Equal(t, models.InterfaceTable, col.Table)
	assert.Equal(t, []string{"device_serial", "name"}, col.KeyColumns)
	assert.Equal(t, []string{"device_id"}, col.RequiredForeignKeys)
	assert.Equal(t, recon.DeleteHard, col.DeleteMethod)
	assert.Equal(t, recon.FetchRows, col.FetchMode)
	assert.Len(t, col.Objects, 1)

	// device_id is not part of the snapshot; it is resolved later.
	_, present := col.Objects[0].Attributes["device_id"]
	assert.False(t, present)
}

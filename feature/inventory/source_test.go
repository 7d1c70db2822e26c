package inventory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"inventory-sync/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func snapshotReader(body string) io.ReadCloser {
	return io.NopCloser(bytes.NewReader([]byte(body)))
}

func TestSource_LoadDevices(t *testing.T) {
	cfg := Config{DevicesObject: "inventory/devices.json"}

	t.Run("Success", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "inventory", "inventory/devices.json", mock.Anything).
			Return(snapshotReader(`{
				"version": 1,
				"generated_at": "2026-08-01T06:00:00Z",
				"complete": true,
				"devices": [
					{"serial_number": "SN-1", "hostname": "core-1", "site": "ams1", "vendor": "juniper", "model": "qfx5120", "status": "active"}
				]
			}`), nil)

		src := NewSource(client, "inventory", cfg)
		snap, err := src.LoadDevices(context.Background())
		assert.NoError(t, err)
		assert.True(t, snap.Complete)
		assert.Len(t, snap.Devices, 1)
		assert.Equal(t, "SN-1", snap.Devices[0].SerialNumber)
		client.AssertExpectations(t)
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "inventory", "inventory/devices.json", mock.Anything).
			Return(snapshotReader(`{"version": 2, "devices": []}`), nil)

		src := NewSource(client, "inventory", cfg)
		snap, err := src.LoadDevices(context.Background())
		assert.Error(t, err)
		assert.Nil(t, snap)
		assert.Contains(t, err.Error(), "version 2")
	})

	t.Run("FetchError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "inventory", "inventory/devices.json", mock.Anything).
			Return(nil, errors.New("connection refused"))

		src := NewSource(client, "inventory", cfg)
		_, err := src.LoadDevices(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get snapshot")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "inventory", "inventory/devices.json", mock.Anything).
			Return(snapshotReader(`{"version": 1, "devices": [`), nil)

		src := NewSource(client, "inventory", cfg)
		_, err := src.LoadDevices(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse snapshot")
	})
}

func TestSource_LoadInterfaces(t *testing.T) {
	cfg := Config{InterfacesObject: "inventory/interfaces.json"}

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "inventory", "inventory/interfaces.json", mock.Anything).
		Return(snapshotReader(`{
			"version": 1,
			"interfaces": [
				{"device_serial": "SN-1", "name": "xe-0/0/1", "mac_address": "aa:bb:cc:dd:ee:ff", "speed_mbps": 10000, "enabled": true}
			]
		}`), nil)

	src := NewSource(client, "inventory", cfg)
	snap, err := src.LoadInterfaces(context.Background())
	assert.NoError(t, err)
	assert.Len(t, snap.Interfaces, 1)
	assert.Equal(t, "xe-0/0/1", snap.Interfaces[0].Name)
	assert.Equal(t, 10000, snap.Interfaces[0].SpeedMbps)
	client.AssertExpectations(t)
}

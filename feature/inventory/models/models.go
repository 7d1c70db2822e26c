package models

import "time"

// DeviceSnapshot is the devices inventory snapshot published by the external
// source of truth.
type DeviceSnapshot struct {
	// Version is the snapshot schema version.
	Version int `json:"version"`

	// GeneratedAt is when the source produced the snapshot.
	GeneratedAt time.Time `json:"generated_at"`

	// Complete marks the snapshot as the full identity universe. A complete
	// snapshot switches the pass to full-replacement mode: every persisted
	// device outside it is purged.
	Complete bool `json:"complete"`

	// Devices is the ordered list of desired devices.
	Devices []DeviceRecord `json:"devices"`
}

// DeviceRecord is one network device as described by the source of truth.
type DeviceRecord struct {
	// SerialNumber is the natural key of the device.
	SerialNumber string `json:"serial_number"`
	// Hostname is the device's configured hostname.
	Hostname string `json:"hostname"`
	// Site is the site code where the device is racked.
	Site string `json:"site"`
	// Vendor is the hardware vendor.
	Vendor string `json:"vendor"`
	// Model is the hardware model.
	Model string `json:"model"`
	// Status is the lifecycle status (active, staged, decommissioned).
	Status string `json:"status"`
}

// InterfaceSnapshot is the interfaces inventory snapshot.
type InterfaceSnapshot struct {
	// Version is the snapshot schema version.
	Version int `json:"version"`

	// GeneratedAt is when the source produced the snapshot.
	GeneratedAt time.Time `json:"generated_at"`

	// Interfaces is the ordered list of desired interfaces.
	Interfaces []InterfaceRecord `json:"interfaces"`
}

// InterfaceRecord is one network interface. Interfaces are identified by
// (device_serial, name) and reference their device row by foreign key.
type InterfaceRecord struct {
	// DeviceSerial is the serial number of the owning device.
	DeviceSerial string `json:"device_serial"`
	// Name is the interface name (e.g. "eth0", "xe-0/0/1").
	Name string `json:"name"`
	// MACAddress is the interface's hardware address.
	MACAddress string `json:"mac_address"`
	// SpeedMbps is the negotiated link speed in megabits.
	SpeedMbps int `json:"speed_mbps"`
	// Enabled reports whether the interface is administratively up.
	Enabled bool `json:"enabled"`
}

// SupportedSnapshotVersion is the only snapshot schema this build accepts.
const SupportedSnapshotVersion = 1

// Table bindings for the reconciliation engine.
const (
	// DeviceTable is the target table for devices.
	DeviceTable = "devices"
	// DeviceType is the polymorphic type stamp for device rows.
	DeviceType = "network_device"

	// InterfaceTable is the target table for interfaces.
	InterfaceTable = "device_interfaces"
)

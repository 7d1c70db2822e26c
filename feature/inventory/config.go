package inventory

// Config holds configuration for the inventory feature.
type Config struct {
	// DevicesObject is the object key of the devices snapshot.
	DevicesObject string `mapstructure:"devices_object" default:"inventory/devices.json"`
	// InterfacesObject is the object key of the interfaces snapshot.
	InterfacesObject string `mapstructure:"interfaces_object" default:"inventory/interfaces.json"`
	// CreateAllowed permits creation of rows for new inventory entries.
	CreateAllowed bool `mapstructure:"create_allowed" default:"true"`
	// DeleteAllowed permits deletion of rows absent from the snapshot.
	DeleteAllowed bool `mapstructure:"delete_allowed" default:"true"`
}

package inventory

import (
	"inventory-sync/core/recon"
	"inventory-sync/feature/inventory/models"
)

// deviceCollection builds the desired-state collection for the devices table.
// A complete snapshot carries the full identity universe, switching the pass
// to full-replacement mode.
func deviceCollection(snap *models.DeviceSnapshot, cfg Config) *recon.Collection {
	col := &recon.Collection{
		Name:       "devices",
		Table:      models.DeviceTable,
		KeyColumns: []string{"serial_number"},
		Capabilities: recon.Capabilities{
			CreatedAt:  true,
			UpdatedAt:  true,
			TypeColumn: true,
		},
		TypeValue: models.DeviceType,
		Strategy: recon.Strategy{
			CreateAllowed: cfg.CreateAllowed,
			DeleteAllowed: cfg.DeleteAllowed,
		},
		DeleteMethod: recon.DeleteSoft,
		FetchMode:    recon.FetchBulk,
	}

	for _, d := range snap.Devices {
		col.Objects = append(col.Objects, &recon.Object{Attributes: recon.Attributes{
			"serial_number": d.SerialNumber,
			"hostname":      d.Hostname,
			"site":          d.Site,
			"vendor":        d.Vendor,
			"model":         d.Model,
			"status":        d.Status,
		}})
	}

	if snap.Complete {
		universe := make([]recon.Identity, 0, len(col.Objects))
		for _, obj := range col.Objects {
			universe = append(universe, col.IdentityOf(obj.Attributes))
		}
		col.Universe = universe
	}

	return col
}

// interfaceCollection builds the desired-state collection for the interfaces
// table. Interfaces are keyed by (device_serial, name) and must carry the
// device_id foreign key before they are written; attribute resolution happens
// in the service, which owns the database handle.
func interfaceCollection(snap *models.InterfaceSnapshot, cfg Config) *recon.Collection {
	col := &recon.Collection{
		Name:       "interfaces",
		Table:      models.InterfaceTable,
		KeyColumns: []string{"device_serial", "name"},
		Capabilities: recon.Capabilities{
			CreatedOn: true,
			UpdatedOn: true,
		},
		Strategy: recon.Strategy{
			CreateAllowed: cfg.CreateAllowed,
			DeleteAllowed: cfg.DeleteAllowed,
		},
		RequiredForeignKeys: []string{"device_id"},
		DeleteMethod:        recon.DeleteHard,
		FetchMode:           recon.FetchRows,
	}

	for _, it := range snap.Interfaces {
		col.Objects = append(col.Objects, &recon.Object{Attributes: recon.Attributes{
			"device_serial": it.DeviceSerial,
			"name":          it.Name,
			"mac_address":   it.MACAddress,
			"speed_mbps":    it.SpeedMbps,
			"enabled":       it.Enabled,
		}})
	}

	return col
}

// Package inventory converges the local database to the inventory snapshots
// published by the external source of truth.
//
// The source of truth drops JSON snapshots (devices, interfaces) into the
// configured bucket. The feature materializes each snapshot into a
// desired-state collection and hands it to the reconciliation engine
// (core/recon), which computes and applies the minimal create/update/delete
// set.
//
// # Collections
//
//   - devices: keyed by serial_number, soft-deleted, stamped with
//     created_at/updated_at and a polymorphic type. A snapshot marked
//     complete switches the pass to full-replacement mode.
//   - interfaces: keyed by (device_serial, name), hard-deleted, stamped with
//     created_on/updated_on dates. Each interface carries a device_id
//     foreign key resolved from the devices table; the engine's reconnect
//     hook re-resolves it between the update and create phases.
//
// # Surfaces
//
// The feature exposes POST /sync/{collection} and GET /sync/status over
// Fiber, and the same service backs the `sync` CLI command. Concurrent
// triggers of one collection share a single pass via singleflight.
package inventory

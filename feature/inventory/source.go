package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"inventory-sync/core/storage"
	"inventory-sync/feature/inventory/models"

	"github.com/minio/minio-go/v7"
)

// Source materializes desired-state snapshots from the object storage bucket
// the external source of truth publishes into.
type Source struct {
	client storage.Client
	bucket string
	cfg    Config
}

// NewSource creates a snapshot source.
func NewSource(client storage.Client, bucket string, cfg Config) *Source {
	return &Source{client: client, bucket: bucket, cfg: cfg}
}

// LoadDevices fetches and decodes the devices snapshot.
func (s *Source) LoadDevices(ctx context.Context) (*models.DeviceSnapshot, error) {
	var snap models.DeviceSnapshot
	if err := s.fetch(ctx, s.cfg.DevicesObject, &snap); err != nil {
		return nil, err
	}
	if snap.Version != models.SupportedSnapshotVersion {
		return nil, fmt.Errorf("devices snapshot version %d not supported", snap.Version)
	}
	return &snap, nil
}

// LoadInterfaces fetches and decodes the interfaces snapshot.
func (s *Source) LoadInterfaces(ctx context.Context) (*models.InterfaceSnapshot, error) {
	var snap models.InterfaceSnapshot
	if err := s.fetch(ctx, s.cfg.InterfacesObject, &snap); err != nil {
		return nil, err
	}
	if snap.Version != models.SupportedSnapshotVersion {
		return nil, fmt.Errorf("interfaces snapshot version %d not supported", snap.Version)
	}
	return &snap, nil
}

func (s *Source) fetch(ctx context.Context, objectName string, out any) error {
	reader, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to get snapshot %s: %w", objectName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", objectName, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse snapshot %s: %w", objectName, err)
	}
	return nil
}

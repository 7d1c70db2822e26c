package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"inventory-sync/core/database"
	"inventory-sync/core/recon"
	"inventory-sync/core/utils"
	"inventory-sync/feature/inventory/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// PassStatus is the recorded outcome of the most recent pass per collection.
type PassStatus struct {
	Collection string    `json:"collection"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Deleted    int       `json:"deleted"`
	Skipped    int       `json:"skipped"`
	Error      string    `json:"error,omitempty"`
}

// Service runs reconciliation passes for the inventory collections.
// Concurrent triggers of the same collection share one pass via singleflight;
// distinct collections may run concurrently since their identity spaces are
// disjoint tables.
type Service struct {
	source *Source
	db     *gorm.DB
	logger *zap.Logger
	rec    *recon.Reconciler
	cfg    Config

	sf     singleflight.Group
	mu     sync.RWMutex
	status map[string]PassStatus
}

// NewService creates the inventory service.
func NewService(source *Source, db *gorm.DB, logger *zap.Logger, cfg Config, engine recon.Config) *Service {
	return &Service{
		source: source,
		db:     db,
		logger: logger,
		rec:    recon.New(db, logger, engine),
		cfg:    cfg,
		status: make(map[string]PassStatus),
	}
}

// SyncDevices reconciles the devices table against the devices snapshot.
func (s *Service) SyncDevices(ctx context.Context) (PassStatus, error) {
	return s.runShared(ctx, "devices", s.syncDevices)
}

// SyncInterfaces reconciles the interfaces table against the interfaces
// snapshot. Run SyncDevices first when both snapshots changed, so new
// devices exist before their interfaces resolve foreign keys.
func (s *Service) SyncInterfaces(ctx context.Context) (PassStatus, error) {
	return s.runShared(ctx, "interfaces", s.syncInterfaces)
}

// SyncAll reconciles devices, then interfaces.
func (s *Service) SyncAll(ctx context.Context) ([]PassStatus, error) {
	devices, err := s.SyncDevices(ctx)
	if err != nil {
		return []PassStatus{devices}, err
	}
	interfaces, err := s.SyncInterfaces(ctx)
	return []PassStatus{devices, interfaces}, err
}

// Status returns the last recorded pass per collection, sorted by name.
func (s *Service) Status() []PassStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PassStatus, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Collection < out[j].Collection })
	return out
}

// runShared funnels concurrent triggers of one collection into a single pass.
func (s *Service) runShared(ctx context.Context, name string, fn func(context.Context) (*recon.Collection, error)) (PassStatus, error) {
	v, err, _ := s.sf.Do(name, func() (any, error) {
		st := PassStatus{Collection: name, StartedAt: time.Now()}

		col, err := fn(ctx)
		st.FinishedAt = time.Now()
		if col != nil {
			st.Created = len(col.Result.Created)
			st.Updated = len(col.Result.Updated)
			st.Deleted = len(col.Result.Deleted)
			st.Skipped = col.Result.Skipped
		}
		if err != nil {
			st.Error = err.Error()
		}

		s.mu.Lock()
		s.status[name] = st
		s.mu.Unlock()

		return st, err
	})
	return v.(PassStatus), err
}

func (s *Service) syncDevices(ctx context.Context) (*recon.Collection, error) {
	if err := database.VerifyColumns(s.db, models.DeviceTable,
		"id", "serial_number", "deleted_at"); err != nil {
		return nil, err
	}

	snap, err := s.source.LoadDevices(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("devices snapshot loaded",
		zap.Time("generated_at", snap.GeneratedAt),
		zap.Int("devices", len(snap.Devices)),
		zap.Bool("complete", snap.Complete),
	)

	col := deviceCollection(snap, s.cfg)
	if err := s.rec.Reconcile(ctx, col); err != nil {
		return col, err
	}
	return col, nil
}

func (s *Service) syncInterfaces(ctx context.Context) (*recon.Collection, error) {
	if err := database.VerifyColumns(s.db, models.InterfaceTable,
		"id", "device_serial", "name", "device_id"); err != nil {
		return nil, err
	}

	snap, err := s.source.LoadInterfaces(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("interfaces snapshot loaded",
		zap.Time("generated_at", snap.GeneratedAt),
		zap.Int("interfaces", len(snap.Interfaces)),
	)

	col := interfaceCollection(snap, s.cfg)

	// Resolve device foreign keys up front so matched rows can be updated.
	// Interfaces whose device is unknown keep a nil device_id and fall to
	// the integrity guard.
	if err := s.resolveDeviceIDs(ctx, objectAttrs(col.Objects)); err != nil {
		return nil, fmt.Errorf("resolve device foreign keys: %w", err)
	}

	// Remap once more between the phases: a standalone interfaces pass may
	// reference devices reconciled since the attributes were built.
	col.Reconnect = func(_ *recon.Collection, _ map[recon.Identity]*recon.Object, attrs map[recon.Identity]recon.Attributes) {
		pending := make([]recon.Attributes, 0, len(attrs))
		for _, a := range attrs {
			pending = append(pending, a)
		}
		if err := s.resolveDeviceIDs(ctx, pending); err != nil {
			s.logger.Warn("foreign key remap failed, leaving entries unresolved", zap.Error(err))
		}
	}

	if err := s.rec.Reconcile(ctx, col); err != nil {
		return col, err
	}
	return col, nil
}

// objectAttrs collects the attribute maps of a desired object list.
func objectAttrs(objects []*recon.Object) []recon.Attributes {
	out := make([]recon.Attributes, len(objects))
	for i, obj := range objects {
		out[i] = obj.Attributes
	}
	return out
}

// resolveDeviceIDs fills device_id on every attribute map whose device_serial
// matches a live device row. Unknown serials are left untouched.
func (s *Service) resolveDeviceIDs(ctx context.Context, attrs []recon.Attributes) error {
	serialSet := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		serialSet[utils.ToString(a["device_serial"])] = struct{}{}
	}
	if len(serialSet) == 0 {
		return nil
	}
	serials := make([]string, 0, len(serialSet))
	for serial := range serialSet {
		serials = append(serials, serial)
	}

	var rows []struct {
		ID           int64
		SerialNumber string
	}
	err := s.db.WithContext(ctx).
		Table(models.DeviceTable).
		Select("id", "serial_number").
		Where("serial_number IN ?", serials).
		Where("deleted_at IS NULL").
		Find(&rows).Error
	if err != nil {
		return err
	}

	bySerial := make(map[string]int64, len(rows))
	for _, r := range rows {
		bySerial[r.SerialNumber] = r.ID
	}

	for _, a := range attrs {
		if id, ok := bySerial[utils.ToString(a["device_serial"])]; ok {
			a["device_id"] = id
		}
	}
	return nil
}

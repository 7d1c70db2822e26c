package cmd

import (
	"context"
	"fmt"

	"inventory-sync/core/config"
	"inventory-sync/core/database"
	"inventory-sync/core/logger"
	"inventory-sync/core/storage"
	"inventory-sync/feature/inventory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncPolicy string

// syncCmd runs one reconciliation pass without starting the server.
var syncCmd = &cobra.Command{
	Use:   "sync [devices|interfaces|all]",
	Short: "Run a one-shot reconciliation pass",
	Long: `Run a reconciliation pass for the given collection and exit.

The desired state is read from the configured snapshot objects. A devices
snapshot marked complete purges every device outside it (full replacement).

Examples:
  # Reconcile everything (devices first, then interfaces)
  inventory-sync sync all

  # Reconcile only devices, downgrading violations to warnings
  inventory-sync sync devices --policy lenient`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"devices", "interfaces", "all"},
	RunE:      runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncPolicy, "policy", "", "Override the violation policy (strict, lenient)")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if syncPolicy != "" {
		cfg.Recon.Policy = syncPolicy
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	source := inventory.NewSource(client, cfg.Storage.Bucket, cfg.Inventory)
	svc := inventory.NewService(source, db, l, cfg.Inventory, cfg.Recon)

	var statuses []inventory.PassStatus
	switch args[0] {
	case "devices":
		st, err := svc.SyncDevices(ctx)
		statuses = append(statuses, st)
		if err != nil {
			return err
		}
	case "interfaces":
		st, err := svc.SyncInterfaces(ctx)
		statuses = append(statuses, st)
		if err != nil {
			return err
		}
	case "all":
		statuses, err = svc.SyncAll(ctx)
		if err != nil {
			return err
		}
	}

	for _, st := range statuses {
		l.Info("pass summary",
			zap.String("collection", st.Collection),
			zap.Int("created", st.Created),
			zap.Int("updated", st.Updated),
			zap.Int("deleted", st.Deleted),
			zap.Int("skipped", st.Skipped),
			zap.Duration("took", st.FinishedAt.Sub(st.StartedAt)),
		)
	}
	return nil
}

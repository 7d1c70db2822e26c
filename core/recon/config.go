package recon

// Config holds configuration for the reconciliation engine.
type Config struct {
	// Policy is the violation policy (strict, lenient).
	Policy string `mapstructure:"policy" default:"strict"`
	// BulkBatchSize is the scan batch size in bulk fetch mode.
	BulkBatchSize int `mapstructure:"bulk_batch_size" default:"1000"`
	// RowBatchSize is the scan batch size in row-object fetch mode.
	RowBatchSize int `mapstructure:"row_batch_size" default:"64"`
	// PurgeBatchSize is the per-transaction batch size for full-replacement
	// purges. Bounds memory and lock duration.
	PurgeBatchSize int `mapstructure:"purge_batch_size" default:"500"`
}

func (c Config) bulkBatchSize() int {
	if c.BulkBatchSize <= 0 {
		return 1000
	}
	return c.BulkBatchSize
}

func (c Config) rowBatchSize() int {
	if c.RowBatchSize <= 0 {
		return 64
	}
	return c.RowBatchSize
}

func (c Config) purgeBatchSize() int {
	if c.PurgeBatchSize <= 0 {
		return 500
	}
	return c.PurgeBatchSize
}

package models

// ParquetFileRecord is the on-disk row of a catalog snapshot written with
// parquet-go. Optional columns use pointers.
type ParquetFileRecord struct {
	Position     int64   `parquet:"position"`
	URL          string  `parquet:"url"`
	Format       string  `parquet:"format"`
	Origin       string  `parquet:"origin"`
	SizeBytes    *int64  `parquet:"size_bytes,optional"`
	Size         *string `parquet:"size,optional"`
	DiscoveredAt int64   `parquet:"discovered_at_ns"` // unix nanoseconds, UTC
}

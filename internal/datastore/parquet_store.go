package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/meshhound/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ParquetStore keeps the snapshot in a single Parquet file that is
// rewritten through a temp file and renamed into place.
type ParquetStore struct {
	path   string
	codec  string
	logger zerolog.Logger
}

// NewParquetStore prepares the directory holding path.
func NewParquetStore(path, codec string, logger zerolog.Logger) (*ParquetStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create parquet directory %s: %w", dir, err)
		}
	}
	return &ParquetStore{
		path:   path,
		codec:  codec,
		logger: logger.With().Str("component", "ParquetStore").Logger(),
	}, nil
}

// Load reads the snapshot. A missing or empty file is an empty catalog.
func (p *ParquetStore) Load(_ context.Context) ([]models.FileRecord, error) {
	rows, err := ReadParquetFile(p.path)
	if err != nil {
		return nil, err
	}
	records := make([]models.FileRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, fromParquet(row))
	}
	p.logger.Debug().Int("count", len(records)).Str("file", p.path).Msg("Loaded catalog snapshot")
	return records, nil
}

// Save writes all records to a temp file and renames it over the snapshot.
func (p *ParquetStore) Save(ctx context.Context, records []models.FileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WriteParquetFile(p.path, p.codec, records, p.logger); err != nil {
		return err
	}
	p.logger.Debug().Int("count", len(records)).Str("file", p.path).Msg("Saved catalog snapshot")
	return nil
}

func (p *ParquetStore) Close() error { return nil }

// WriteParquetFile writes records to path atomically. It also backs the
// export command.
func WriteParquetFile(path, codec string, records []models.FileRecord, logger zerolog.Logger) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp parquet file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	writer := parquet.NewWriter(tmp, parquet.SchemaOf(models.ParquetFileRecord{}), compressionOption(codec, logger))
	for i, rec := range records {
		if err := writer.Write(toParquet(i, rec)); err != nil {
			cleanup()
			return fmt.Errorf("failed to write record %s: %w", rec.URL, err)
		}
	}
	if err := writer.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing Parquet writer for '%s': %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync parquet file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move parquet snapshot into place: %w", err)
	}
	return nil
}

// ReadParquetFile returns the rows of path ordered by position.
func ReadParquetFile(path string) ([]models.ParquetFileRecord, error) {
	osFile, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open parquet file '%s': %w", path, err)
	}
	defer func() { _ = osFile.Close() }()

	stat, err := osFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat parquet file '%s': %w", path, err)
	}
	if stat.Size() == 0 {
		return nil, nil
	}

	pqFile, err := parquet.OpenFile(osFile, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file '%s': %w", path, err)
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	var rows []models.ParquetFileRecord
	for {
		var row models.ParquetFileRecord
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading record from parquet file '%s': %w", path, err)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows, nil
}

func compressionOption(codec string, logger zerolog.Logger) parquet.WriterOption {
	switch strings.ToLower(codec) {
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "none", "uncompressed", "":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		logger.Warn().Str("codec", codec).Msg("Unsupported compression codec string, defaulting to Uncompressed")
		return parquet.Compression(&parquet.Uncompressed)
	}
}

func toParquet(position int, rec models.FileRecord) models.ParquetFileRecord {
	row := models.ParquetFileRecord{
		Position:     int64(position),
		URL:          rec.URL,
		Format:       string(rec.Format),
		Origin:       rec.Origin,
		SizeBytes:    rec.SizeBytes,
		DiscoveredAt: rec.DiscoveredAt.UTC().UnixNano(),
	}
	if rec.Size != "" {
		size := rec.Size
		row.Size = &size
	}
	return row
}

func fromParquet(row models.ParquetFileRecord) models.FileRecord {
	rec := models.FileRecord{
		URL:          row.URL,
		Format:       models.FormatTag(row.Format),
		Origin:       row.Origin,
		SizeBytes:    row.SizeBytes,
		DiscoveredAt: time.Unix(0, row.DiscoveredAt).UTC(),
	}
	if row.Size != nil {
		rec.Size = *row.Size
	}
	return rec
}

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/pkg/logger"
)

// Output file names inside the output directory
const (
	FundamentalsFile = "sector_fundamentals.parquet"
	ValuationsFile   = "sector_valuations.parquet"
	SignalsFile      = "sector_signals.parquet"
)

const parquetParallelism = 4

// ParquetSink writes each output table as one parquet file.
// Files are replaced atomically: temp file in the same directory, fsync, rename.
// ⭐ SSOT: 출력 파일 쓰기는 이 타입에서만
type ParquetSink struct {
	dir        string
	configHash string
	logger     *logger.Logger
}

// NewParquetSink creates the output directory if needed
func NewParquetSink(dir, configHash string, log *logger.Logger) (*ParquetSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &ParquetSink{
		dir:        dir,
		configHash: configHash,
		logger:     log.WithComponent("parquet_sink"),
	}, nil
}

// SaveFundamentals replaces sector_fundamentals.parquet
func (s *ParquetSink) SaveFundamentals(ctx context.Context, records []contracts.SectorFundamentalRecord) error {
	rows := make([]interface{}, 0, len(records))
	for i := range records {
		row, err := NewFundamentalRow(&records[i], s.configHash)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", records[i].SectorCode, records[i].ReportDate.Format(dateLayout), err)
		}
		rows = append(rows, &row)
	}
	return s.write(ctx, FundamentalsFile, new(FundamentalRow), rows)
}

// SaveValuations replaces sector_valuations.parquet
func (s *ParquetSink) SaveValuations(ctx context.Context, records []contracts.SectorValuationRecord) error {
	rows := make([]interface{}, 0, len(records))
	for i := range records {
		row := NewValuationRow(&records[i], s.configHash)
		rows = append(rows, &row)
	}
	return s.write(ctx, ValuationsFile, new(ValuationRow), rows)
}

// SaveSignals replaces sector_signals.parquet
func (s *ParquetSink) SaveSignals(ctx context.Context, signals []contracts.SectorSignal) error {
	rows := make([]interface{}, 0, len(signals))
	for i := range signals {
		row, err := NewSignalRow(&signals[i], s.configHash)
		if err != nil {
			return fmt.Errorf("encode signal %s: %w", signals[i].Score.SectorCode, err)
		}
		rows = append(rows, &row)
	}
	return s.write(ctx, SignalsFile, new(SignalRow), rows)
}

// write streams rows into a temp file and renames it over the target.
// Readers never see a partially written table.
func (s *ParquetSink) write(ctx context.Context, name string, schema interface{}, rows []interface{}) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	fh, err := local.NewLocalFileWriter(tmpPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", tmpPath, err)
	}

	pw, err := writer.NewParquetWriter(fh, schema, parquetParallelism)
	if err != nil {
		fh.Close()
		return fmt.Errorf("parquet writer %s: %w", name, err)
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, r := range rows {
		if err = pw.Write(r); err != nil {
			pw.WriteStop()
			fh.Close()
			return fmt.Errorf("write %s row: %w", name, err)
		}
	}

	if err = pw.WriteStop(); err != nil {
		fh.Close()
		return fmt.Errorf("finish %s: %w", name, err)
	}
	if err = fh.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = syncFile(tmpPath); err != nil {
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err = os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"file": target,
		"rows": len(rows),
	}).Info("Parquet write finished")
	return nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

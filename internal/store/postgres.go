package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/pkg/logger"
)

// schemaDDL creates the output tables if they do not exist
const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS sector;

	CREATE TABLE IF NOT EXISTS sector.fundamentals (
		sector_code        TEXT NOT NULL,
		report_date        DATE NOT NULL,
		ticker_count       INTEGER NOT NULL,
		entity_types       TEXT NOT NULL,
		absolute           JSONB NOT NULL,
		ratios             JSONB NOT NULL,
		growth             JSONB NOT NULL,
		data_quality_score DOUBLE PRECISION NOT NULL,
		config_hash        TEXT NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (sector_code, report_date)
	);

	CREATE TABLE IF NOT EXISTS sector.valuations (
		sector_code      TEXT NOT NULL,
		trade_date       DATE NOT NULL,
		sector_pe        DOUBLE PRECISION,
		sector_pb        DOUBLE PRECISION,
		sector_ps        DOUBLE PRECISION,
		pe_percentile_5y DOUBLE PRECISION,
		pb_percentile_5y DOUBLE PRECISION,
		ps_percentile_5y DOUBLE PRECISION,
		return_1m        DOUBLE PRECISION,
		return_3m        DOUBLE PRECISION,
		breadth          DOUBLE PRECISION,
		ticker_count     INTEGER NOT NULL,
		total_market_cap DOUBLE PRECISION NOT NULL,
		config_hash      TEXT NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (sector_code, trade_date)
	);

	CREATE TABLE IF NOT EXISTS sector.signals (
		sector_code     TEXT NOT NULL,
		period          DATE NOT NULL,
		valuation_date  DATE,
		fa_total_score  DOUBLE PRECISION,
		ta_total_score  DOUBLE PRECISION,
		combined_score  DOUBLE PRECISION NOT NULL,
		fa_weight       DOUBLE PRECISION NOT NULL,
		ta_weight       DOUBLE PRECISION NOT NULL,
		fa_components   JSONB NOT NULL,
		ta_components   JSONB NOT NULL,
		signal          TEXT NOT NULL,
		signal_strength INTEGER NOT NULL,
		rationale       TEXT NOT NULL,
		config_hash     TEXT NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (sector_code, period)
	);
`

// PostgresSink upserts output tables, one transaction per table
type PostgresSink struct {
	pool       *pgxpool.Pool
	configHash string
	logger     *logger.Logger
}

// NewPostgresSink creates a postgres sink on an existing pool
func NewPostgresSink(pool *pgxpool.Pool, configHash string, log *logger.Logger) *PostgresSink {
	return &PostgresSink{
		pool:       pool,
		configHash: configHash,
		logger:     log.WithComponent("postgres_sink"),
	}
}

// EnsureSchema creates the sector schema and tables
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveFundamentals upserts sector.fundamentals
func (s *PostgresSink) SaveFundamentals(ctx context.Context, records []contracts.SectorFundamentalRecord) error {
	query := `
		INSERT INTO sector.fundamentals (
			sector_code, report_date, ticker_count, entity_types,
			absolute, ratios, growth, data_quality_score, config_hash, updated_at
		) VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7::jsonb, $8, $9, NOW())
		ON CONFLICT (sector_code, report_date) DO UPDATE SET
			ticker_count = EXCLUDED.ticker_count,
			entity_types = EXCLUDED.entity_types,
			absolute = EXCLUDED.absolute,
			ratios = EXCLUDED.ratios,
			growth = EXCLUDED.growth,
			data_quality_score = EXCLUDED.data_quality_score,
			config_hash = EXCLUDED.config_hash,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for i := range records {
		row, err := NewFundamentalRow(&records[i], s.configHash)
		if err != nil {
			return fmt.Errorf("encode %s: %w", records[i].SectorCode, err)
		}
		batch.Queue(query,
			records[i].SectorCode, records[i].ReportDate, row.TickerCount, row.EntityTypes,
			row.AbsoluteJSON, row.RatiosJSON, row.GrowthJSON, row.DataQualityScore, row.ConfigHash,
		)
	}
	return s.sendInTx(ctx, "sector.fundamentals", batch)
}

// SaveValuations upserts sector.valuations
func (s *PostgresSink) SaveValuations(ctx context.Context, records []contracts.SectorValuationRecord) error {
	query := `
		INSERT INTO sector.valuations (
			sector_code, trade_date, sector_pe, sector_pb, sector_ps,
			pe_percentile_5y, pb_percentile_5y, ps_percentile_5y,
			return_1m, return_3m, breadth, ticker_count, total_market_cap, config_hash, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (sector_code, trade_date) DO UPDATE SET
			sector_pe = EXCLUDED.sector_pe,
			sector_pb = EXCLUDED.sector_pb,
			sector_ps = EXCLUDED.sector_ps,
			pe_percentile_5y = EXCLUDED.pe_percentile_5y,
			pb_percentile_5y = EXCLUDED.pb_percentile_5y,
			ps_percentile_5y = EXCLUDED.ps_percentile_5y,
			return_1m = EXCLUDED.return_1m,
			return_3m = EXCLUDED.return_3m,
			breadth = EXCLUDED.breadth,
			ticker_count = EXCLUDED.ticker_count,
			total_market_cap = EXCLUDED.total_market_cap,
			config_hash = EXCLUDED.config_hash,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for i := range records {
		r := &records[i]
		batch.Queue(query,
			r.SectorCode, r.Date, r.SectorPE, r.SectorPB, r.SectorPS,
			r.PEPercentile5Y, r.PBPercentile5Y, r.PSPercentile5Y,
			r.Return1M, r.Return3M, r.Breadth, r.TickerCount, r.TotalMarketCap, s.configHash,
		)
	}
	return s.sendInTx(ctx, "sector.valuations", batch)
}

// SaveSignals upserts sector.signals
func (s *PostgresSink) SaveSignals(ctx context.Context, signals []contracts.SectorSignal) error {
	query := `
		INSERT INTO sector.signals (
			sector_code, period, valuation_date, fa_total_score, ta_total_score,
			combined_score, fa_weight, ta_weight, fa_components, ta_components,
			signal, signal_strength, rationale, config_hash, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11, $12, $13, $14, NOW())
		ON CONFLICT (sector_code, period) DO UPDATE SET
			valuation_date = EXCLUDED.valuation_date,
			fa_total_score = EXCLUDED.fa_total_score,
			ta_total_score = EXCLUDED.ta_total_score,
			combined_score = EXCLUDED.combined_score,
			fa_weight = EXCLUDED.fa_weight,
			ta_weight = EXCLUDED.ta_weight,
			fa_components = EXCLUDED.fa_components,
			ta_components = EXCLUDED.ta_components,
			signal = EXCLUDED.signal,
			signal_strength = EXCLUDED.signal_strength,
			rationale = EXCLUDED.rationale,
			config_hash = EXCLUDED.config_hash,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for i := range signals {
		sig := &signals[i]
		row, err := NewSignalRow(sig, s.configHash)
		if err != nil {
			return fmt.Errorf("encode signal %s: %w", sig.Score.SectorCode, err)
		}
		batch.Queue(query,
			sig.Score.SectorCode, sig.Score.Period, sig.Score.ValuationDate,
			sig.Score.FATotalScore, sig.Score.TATotalScore,
			sig.Score.CombinedScore, sig.Score.FAWeight, sig.Score.TAWeight,
			row.FAComponentsJSON, row.TAComponentsJSON,
			row.Signal, row.SignalStrength, row.Rationale, row.ConfigHash,
		)
	}
	return s.sendInTx(ctx, "sector.signals", batch)
}

// sendInTx runs a batch inside one transaction; any failure rolls the table back
func (s *PostgresSink) sendInTx(ctx context.Context, table string, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", table, err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"table": table,
		"rows":  batch.Len(),
	}).Info("Upsert finished")
	return nil
}

package contracts

import (
	"context"
	"time"
)

// InputSource provides the four input feeds
// ⭐ SSOT: 입력 테이블 인터페이스 (CSV 로더가 구현)
type InputSource interface {
	LoadMetricObservations(ctx context.Context) ([]MetricObservation, error)
	LoadSectorMappings(ctx context.Context) ([]SectorMapping, error)
	LoadMarketObservations(ctx context.Context, from, to time.Time) ([]MarketObservation, error)
	LoadValuationObservations(ctx context.Context, from, to time.Time) ([]ValuationObservation, error)
}

// OutputSink persists the output tables. File sinks replace the whole table;
// the postgres sink upserts by primary key so rows outside a filtered run are kept.
// ⭐ SSOT: 출력 테이블 인터페이스 (parquet, postgres)
type OutputSink interface {
	SaveFundamentals(ctx context.Context, records []SectorFundamentalRecord) error
	SaveValuations(ctx context.Context, records []SectorValuationRecord) error
	SaveSignals(ctx context.Context, signals []SectorSignal) error
}

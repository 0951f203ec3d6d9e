// Package processor runs the sector pipeline end to end.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/internal/entity"
	"github.com/wonny/sectorlens/internal/fundamental"
	"github.com/wonny/sectorlens/internal/scoring"
	"github.com/wonny/sectorlens/internal/scoringconfig"
	"github.com/wonny/sectorlens/internal/sector"
	"github.com/wonny/sectorlens/internal/signal"
	"github.com/wonny/sectorlens/internal/valuation"
	"github.com/wonny/sectorlens/pkg/logger"
)

// Processor coordinates the sector pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
//
//	FA aggregate → TA aggregate → FA score → TA score → combine → signal → persist
type Processor struct {
	source   contracts.InputSource
	sink     contracts.OutputSink // nil = persist 생략
	entities *entity.Registry
	cfg      *scoringconfig.Config
	logger   *logger.Logger
}

// RunConfig holds the date filters of one run. Zero values mean unbounded.
type RunConfig struct {
	StartDate  time.Time
	EndDate    time.Time
	ReportDate time.Time // FA/signal rows for exactly this report_date
}

// Validate checks the date filters
func (rc RunConfig) Validate() error {
	if !rc.StartDate.IsZero() && !rc.EndDate.IsZero() && rc.EndDate.Before(rc.StartDate) {
		return fmt.Errorf("%w: end_date %s before start_date %s", contracts.ErrConfiguration,
			rc.EndDate.Format(dateLayout), rc.StartDate.Format(dateLayout))
	}
	return nil
}

// RunResult holds the outcome of one run
type RunResult struct {
	Success         bool
	CompletedStages []contracts.Stage
	StageResults    []contracts.StageResult
	StageErrors     map[contracts.Stage]error

	Fundamentals []contracts.SectorFundamentalRecord
	Valuations   []contracts.SectorValuationRecord
	Signals      []contracts.SectorSignal

	Summary         []contracts.SectorQuality
	LowConfidence   []string
	ExcludedTickers []string
	ExcludedMetrics []string
	Issues          []contracts.MappingIssue
	Violations      []error

	ConfigHash string
	Duration   time.Duration
}

const dateLayout = "2006-01-02"

// New creates a processor. sink may be nil to skip persistence.
func New(
	source contracts.InputSource,
	sink contracts.OutputSink,
	entities *entity.Registry,
	cfg *scoringconfig.Config,
	log *logger.Logger,
) *Processor {
	return &Processor{
		source:   source,
		sink:     sink,
		entities: entities,
		cfg:      cfg,
		logger:   log.WithComponent("processor"),
	}
}

// Run executes every stage. FA and TA branches fail independently; whatever was
// produced is still scored and persisted. The returned error is non-nil for a fatal
// configuration error or when any input table could not be loaded.
func (p *Processor) Run(ctx context.Context, rc RunConfig) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{StageErrors: make(map[contracts.Stage]error)}

	if err := rc.Validate(); err != nil {
		return result, err
	}
	if err := scoringconfig.Validate(p.cfg); err != nil {
		return result, err
	}
	hash, err := scoringconfig.Hash(p.cfg)
	if err != nil {
		return result, fmt.Errorf("hash config: %w", err)
	}
	result.ConfigHash = hash

	p.logger.WithFields(map[string]interface{}{
		"start_date":  formatDate(rc.StartDate),
		"end_date":    formatDate(rc.EndDate),
		"report_date": formatDate(rc.ReportDate),
		"config_hash": hash,
	}).Info("Starting sector run")

	mappings, err := p.source.LoadSectorMappings(ctx)
	if err != nil {
		return result, fmt.Errorf("sector mappings: %w", err)
	}
	sectors, err := sector.NewRegistry(mappings)
	if err != nil {
		return result, err
	}

	var loadErrs []error

	// FA branch
	var faRecords []contracts.SectorFundamentalRecord
	faOK := p.stage(result, contracts.StageFAAggregate, func() (int, int, error) {
		obs, err := p.source.LoadMetricObservations(ctx)
		if err != nil {
			loadErrs = append(loadErrs, err)
			return 0, 0, err
		}
		records, issues := p.entities.Pivot(obs)
		agg := fundamental.NewAggregator(p.entities, sectors, p.logger).Aggregate(records, issues)

		result.Issues = append(result.Issues, issues...)
		result.Issues = append(result.Issues, agg.Issues...)
		result.Violations = append(result.Violations, agg.Violations...)
		for _, v := range agg.Violations {
			p.logger.WithError(v).Warn("TTM disabled for sector")
		}

		faRecords = agg.Records
		return len(obs), len(faRecords), nil
	})

	// TA branch
	var taRecords []contracts.SectorValuationRecord
	taOK := p.stage(result, contracts.StageTAAggregate, func() (int, int, error) {
		from := p.historyStart(rc.StartDate)
		market, err := p.source.LoadMarketObservations(ctx, from, rc.EndDate)
		if err != nil {
			loadErrs = append(loadErrs, err)
			return 0, 0, err
		}
		vals, err := p.source.LoadValuationObservations(ctx, from, rc.EndDate)
		if err != nil {
			loadErrs = append(loadErrs, err)
			return 0, 0, err
		}
		agg := valuation.NewAggregator(sectors, p.cfg.ValuationSettings(), p.logger).Aggregate(market, vals)
		result.Issues = append(result.Issues, agg.Issues...)

		taRecords = agg.Records
		return len(market), len(taRecords), nil
	})

	p.logIssues(result.Issues)

	scorer := scoring.NewScorer(p.cfg, p.logger)

	var faScores []signal.PeriodScore
	if faOK {
		p.stage(result, contracts.StageFAScore, func() (int, int, error) {
			scored := 0
			for i := range faRecords {
				s := scorer.ScoreFA(&faRecords[i])
				if s != nil {
					scored++
				}
				faScores = append(faScores, signal.PeriodScore{
					SectorCode: faRecords[i].SectorCode,
					Date:       faRecords[i].ReportDate,
					Score:      s,
				})
			}
			return len(faRecords), scored, nil
		})
	}

	var taScores []signal.PeriodScore
	if taOK {
		p.stage(result, contracts.StageTAScore, func() (int, int, error) {
			scored := 0
			for i := range taRecords {
				s := scorer.ScoreTA(&taRecords[i])
				if s != nil {
					scored++
				}
				taScores = append(taScores, signal.PeriodScore{
					SectorCode: taRecords[i].SectorCode,
					Date:       taRecords[i].Date,
					Score:      s,
				})
			}
			return len(taRecords), scored, nil
		})
	}

	generator := signal.NewGenerator(p.cfg, p.logger)

	var combined []contracts.ScoreRecord
	p.stage(result, contracts.StageCombine, func() (int, int, error) {
		combined = generator.Align(faScores, taScores)
		return len(faScores) + len(taScores), len(combined), nil
	})

	var signals []contracts.SectorSignal
	p.stage(result, contracts.StageSignal, func() (int, int, error) {
		signals = generator.GenerateAll(combined)
		return len(combined), len(signals), nil
	})

	// 전체 이력으로 계산 후 출력만 필터링
	result.Fundamentals = filterFundamentals(faRecords, rc)
	result.Valuations = filterValuations(taRecords, rc)
	result.Signals = filterSignals(signals, rc)

	p.summarize(result, sectors)

	if p.sink != nil {
		p.stage(result, contracts.StagePersist, func() (int, int, error) {
			return p.persist(ctx, result, faOK, taOK)
		})
	} else {
		p.logger.Info("No output sink configured, skipping persist")
	}

	result.Duration = time.Since(start)
	result.Success = len(result.StageErrors) == 0

	p.logger.WithFields(map[string]interface{}{
		"duration":     result.Duration.Seconds(),
		"stages":       len(result.CompletedStages),
		"stage_errors": len(result.StageErrors),
		"signals":      len(result.Signals),
	}).Info("Sector run completed")

	if len(loadErrs) > 0 {
		return result, errors.Join(loadErrs...)
	}
	return result, nil
}

// stage runs one pipeline stage and records its outcome
func (p *Processor) stage(result *RunResult, stage contracts.Stage, fn func() (in, out int, err error)) bool {
	started := time.Now()
	in, out, err := fn()

	sr := contracts.StageResult{
		Stage:       stage,
		Success:     err == nil,
		InputCount:  in,
		OutputCount: out,
		Duration:    time.Since(started).Milliseconds(),
	}

	log := p.logger.WithFields(map[string]interface{}{
		"stage":  stage.String(),
		"input":  in,
		"output": out,
	})

	if err != nil {
		sr.Error = err.Error()
		result.StageErrors[stage] = err
		log.WithError(err).Error(stage.Description() + " 실패")
	} else {
		result.CompletedStages = append(result.CompletedStages, stage)
		log.Info(stage.Description() + " 완료")
	}
	result.StageResults = append(result.StageResults, sr)
	return err == nil
}

// persist writes every table whose stage produced output
func (p *Processor) persist(ctx context.Context, result *RunResult, faOK, taOK bool) (int, int, error) {
	var errs []error
	written := 0

	if faOK {
		if err := p.sink.SaveFundamentals(ctx, result.Fundamentals); err != nil {
			errs = append(errs, fmt.Errorf("fundamentals: %w", err))
		} else {
			written += len(result.Fundamentals)
		}
	}
	if taOK {
		if err := p.sink.SaveValuations(ctx, result.Valuations); err != nil {
			errs = append(errs, fmt.Errorf("valuations: %w", err))
		} else {
			written += len(result.Valuations)
		}
	}
	if faOK || taOK {
		if err := p.sink.SaveSignals(ctx, result.Signals); err != nil {
			errs = append(errs, fmt.Errorf("signals: %w", err))
		} else {
			written += len(result.Signals)
		}
	}

	total := len(result.Fundamentals) + len(result.Valuations) + len(result.Signals)
	return total, written, errors.Join(errs...)
}

// historyStart extends the TA load window back so percentiles and momentum see full history
func (p *Processor) historyStart(start time.Time) time.Time {
	if start.IsZero() {
		return start
	}
	v := p.cfg.ValuationSettings()
	// 영업일 → 달력일 여유분 2배
	return start.AddDate(-v.PercentileWindowYears, 0, -2*v.MomentumLongDays)
}

// logIssues warns once per excluded ticker and metric code
func (p *Processor) logIssues(issues []contracts.MappingIssue) {
	seen := make(map[string]bool)
	for _, is := range issues {
		key := string(is.Kind) + "|" + is.Ticker + "|" + is.MetricCode
		if seen[key] {
			continue
		}
		seen[key] = true

		log := p.logger.WithFields(map[string]interface{}{
			"kind":        string(is.Kind),
			"ticker":      is.Ticker,
			"metric_code": is.MetricCode,
		})
		if is.Excludes() {
			log.Warn("Excluded from aggregation: " + is.Detail)
		} else {
			log.Debug("Duplicate observation, last value kept")
		}
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

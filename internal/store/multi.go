package store

import (
	"context"
	"errors"

	"github.com/wonny/sectorlens/internal/contracts"
)

// MultiSink fans each table out to several sinks.
// Every sink is attempted; errors are joined.
type MultiSink struct {
	sinks []contracts.OutputSink
}

// NewMultiSink combines sinks in write order
func NewMultiSink(sinks ...contracts.OutputSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// SaveFundamentals writes fundamentals to every sink
func (m *MultiSink) SaveFundamentals(ctx context.Context, records []contracts.SectorFundamentalRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.SaveFundamentals(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SaveValuations writes valuations to every sink
func (m *MultiSink) SaveValuations(ctx context.Context, records []contracts.SectorValuationRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.SaveValuations(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SaveSignals writes signals to every sink
func (m *MultiSink) SaveSignals(ctx context.Context, signals []contracts.SectorSignal) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.SaveSignals(ctx, signals); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

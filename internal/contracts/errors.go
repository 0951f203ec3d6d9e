package contracts

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy (SSOT)
// errors.Is(err, ErrXxx) 로 분류, 타입별 구조체는 문맥 정보만 추가
var (
	// ErrConfiguration invalid weights/thresholds. Fatal before any aggregation.
	ErrConfiguration = errors.New("configuration error")

	// ErrDataLoad required input table missing or unreadable. Fatal for the affected branch.
	ErrDataLoad = errors.New("data load error")

	// ErrMapping unknown ticker or metric code. Recovered locally.
	ErrMapping = errors.New("mapping error")

	// ErrCalculation zero/negative denominator. Ratio becomes null.
	ErrCalculation = errors.New("calculation error")

	// ErrFrequencyViolation non-quarterly rows in a TTM path. Fatal for that path only.
	ErrFrequencyViolation = errors.New("frequency violation")
)

// DataLoadError wraps a failure to read an input table
type DataLoadError struct {
	Table string
	Err   error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Table, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDataLoad) succeed
func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// FrequencyViolation is raised when a non-quarterly row reaches TTM logic
type FrequencyViolation struct {
	Ticker     string
	SectorCode string
	ReportDate time.Time
	Frequency  Frequency
	Reason     string
}

func (e *FrequencyViolation) Error() string {
	subject := e.Ticker
	if subject == "" {
		subject = e.SectorCode
	}
	return fmt.Sprintf("frequency violation: %s %s (freq=%q): %s",
		subject, e.ReportDate.Format("2006-01-02"), e.Frequency, e.Reason)
}

// Is makes errors.Is(err, ErrFrequencyViolation) succeed
func (e *FrequencyViolation) Is(target error) bool { return target == ErrFrequencyViolation }

// IssueKind classifies recoverable mapping problems
type IssueKind string

const (
	IssueUnknownTicker     IssueKind = "unknown_ticker"
	IssueUnknownMetric     IssueKind = "unknown_metric"
	IssueUnknownEntityType IssueKind = "unknown_entity_type"
	IssueDuplicateMetric   IssueKind = "duplicate_metric"
	IssueEntityMismatch    IssueKind = "entity_mismatch"
)

// MappingIssue records a ticker or metric excluded from aggregation
type MappingIssue struct {
	Kind       IssueKind `json:"kind"`
	Ticker     string    `json:"ticker"`
	MetricCode string    `json:"metric_code,omitempty"`
	ReportDate time.Time `json:"report_date"`
	Detail     string    `json:"detail,omitempty"`
}

func (i MappingIssue) Error() string {
	return fmt.Sprintf("%s: %s %s %s", i.Kind, i.Ticker, i.MetricCode, i.Detail)
}

// Unwrap lets a MappingIssue be matched with errors.Is(err, ErrMapping)
func (i MappingIssue) Unwrap() error { return ErrMapping }

// Excludes reports whether the issue drops data (duplicates keep the last value)
func (i MappingIssue) Excludes() bool {
	return i.Kind != IssueDuplicateMetric
}

// Package sector holds the immutable ticker → sector registry.
package sector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/sectorlens/internal/contracts"
)

// Registry answers sector membership queries
// ⭐ SSOT: 종목 → 섹터 매핑 (생성 시 1회 검증, 이후 불변)
type Registry struct {
	byTicker map[string]contracts.SectorMapping
	bySector map[string][]string
	sectors  []string
}

// NewRegistry validates mappings and builds the registry.
// A ticker listed twice with the same sector and entity type is accepted once;
// any conflict is a configuration error.
func NewRegistry(mappings []contracts.SectorMapping) (*Registry, error) {
	r := &Registry{
		byTicker: make(map[string]contracts.SectorMapping, len(mappings)),
		bySector: make(map[string][]string),
	}

	for i, m := range mappings {
		m.Ticker = strings.TrimSpace(m.Ticker)
		m.SectorCode = strings.TrimSpace(m.SectorCode)

		if m.Ticker == "" {
			return nil, fmt.Errorf("%w: mapping %d: empty ticker", contracts.ErrConfiguration, i)
		}
		if m.SectorCode == "" {
			return nil, fmt.Errorf("%w: mapping %d (%s): empty sector_code", contracts.ErrConfiguration, i, m.Ticker)
		}
		if _, err := contracts.ParseEntityType(string(m.EntityType)); err != nil {
			return nil, fmt.Errorf("%w: mapping %d (%s): %v", contracts.ErrConfiguration, i, m.Ticker, err)
		}

		if prev, exists := r.byTicker[m.Ticker]; exists {
			if prev != m {
				return nil, fmt.Errorf("%w: ticker %s mapped to %s/%s and %s/%s",
					contracts.ErrConfiguration, m.Ticker, prev.SectorCode, prev.EntityType, m.SectorCode, m.EntityType)
			}
			continue
		}

		r.byTicker[m.Ticker] = m
		r.bySector[m.SectorCode] = append(r.bySector[m.SectorCode], m.Ticker)
	}

	for code, tickers := range r.bySector {
		sort.Strings(tickers)
		r.sectors = append(r.sectors, code)
	}
	sort.Strings(r.sectors)

	return r, nil
}

// SectorOf returns the sector of a ticker
func (r *Registry) SectorOf(ticker string) (string, bool) {
	m, ok := r.byTicker[ticker]
	return m.SectorCode, ok
}

// EntityTypeOf returns the entity type registered for a ticker
func (r *Registry) EntityTypeOf(ticker string) (contracts.EntityType, bool) {
	m, ok := r.byTicker[ticker]
	return m.EntityType, ok
}

// TickersOf returns the sorted constituents of a sector
func (r *Registry) TickersOf(sectorCode string) []string {
	tickers := r.bySector[sectorCode]
	out := make([]string, len(tickers))
	copy(out, tickers)
	return out
}

// Peers returns the other constituents of the ticker's sector
func (r *Registry) Peers(ticker string) []string {
	code, ok := r.SectorOf(ticker)
	if !ok {
		return nil
	}
	var peers []string
	for _, t := range r.bySector[code] {
		if t != ticker {
			peers = append(peers, t)
		}
	}
	return peers
}

// Sectors returns every sector code, sorted
func (r *Registry) Sectors() []string {
	out := make([]string, len(r.sectors))
	copy(out, r.sectors)
	return out
}

// Len returns the number of registered tickers
func (r *Registry) Len() int {
	return len(r.byTicker)
}

// Package entity maps entity-type-specific raw metric codes to canonical fields
// and pivots long-format observations into one record per ticker-period.
package entity

import (
	"fmt"
	"sort"

	"github.com/wonny/sectorlens/internal/contracts"
)

// Adapter maps the raw codes of one entity type
// ⭐ SSOT: 업종별 계정코드 → 표준 필드 매핑은 여기서만
type Adapter interface {
	EntityType() contracts.EntityType
	CanonicalFields() []contracts.Field
	Map(rawCode string) (contracts.Field, bool)
}

// tableAdapter is a code table backed Adapter
type tableAdapter struct {
	entityType contracts.EntityType
	codes      map[string]contracts.Field
	fields     []contracts.Field
}

// NewTableAdapter builds an Adapter from a raw code → field table.
// Two codes mapping to one field is rejected, since pivoting would silently overwrite.
func NewTableAdapter(entityType contracts.EntityType, codes map[string]contracts.Field) (Adapter, error) {
	seen := make(map[contracts.Field]string, len(codes))
	for code, field := range codes {
		if prev, dup := seen[field]; dup {
			return nil, fmt.Errorf("%s: codes %q and %q both map to %s", entityType, prev, code, field)
		}
		seen[field] = code
	}

	fields := make([]contracts.Field, 0, len(seen))
	for _, f := range contracts.AllFields() {
		if _, ok := seen[f]; ok {
			fields = append(fields, f)
		}
	}
	if len(fields) != len(seen) {
		return nil, fmt.Errorf("%s: table maps to non-canonical fields", entityType)
	}

	return &tableAdapter{
		entityType: entityType,
		codes:      codes,
		fields:     fields,
	}, nil
}

func (a *tableAdapter) EntityType() contracts.EntityType { return a.entityType }

// CanonicalFields returns the fields this entity type reports, in canonical order
func (a *tableAdapter) CanonicalFields() []contracts.Field {
	out := make([]contracts.Field, len(a.fields))
	copy(out, a.fields)
	return out
}

func (a *tableAdapter) Map(rawCode string) (contracts.Field, bool) {
	f, ok := a.codes[rawCode]
	return f, ok
}

// Registry holds one Adapter per entity type. Immutable after construction.
type Registry struct {
	adapters map[contracts.EntityType]Adapter
}

// NewRegistry creates a registry; each entity type may appear once
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[contracts.EntityType]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, dup := r.adapters[a.EntityType()]; dup {
			return nil, fmt.Errorf("duplicate adapter for %s", a.EntityType())
		}
		r.adapters[a.EntityType()] = a
	}
	return r, nil
}

// DefaultRegistry returns the built-in company/bank/securities/insurer tables
func DefaultRegistry() *Registry {
	var adapters []Adapter
	for _, et := range contracts.AllEntityTypes() {
		a, err := NewTableAdapter(et, defaultTables[et])
		if err != nil {
			// built-in tables are fixed; a failure here is a programming error
			panic(err)
		}
		adapters = append(adapters, a)
	}
	r, _ := NewRegistry(adapters...)
	return r
}

// For returns the adapter of an entity type
func (r *Registry) For(et contracts.EntityType) (Adapter, bool) {
	a, ok := r.adapters[et]
	return a, ok
}

// Map resolves a raw code for an entity type
func (r *Registry) Map(et contracts.EntityType, rawCode string) (contracts.Field, bool) {
	a, ok := r.adapters[et]
	if !ok {
		return "", false
	}
	return a.Map(rawCode)
}

// CanonicalFields returns the fields of an entity type (nil if unknown)
func (r *Registry) CanonicalFields(et contracts.EntityType) []contracts.Field {
	a, ok := r.adapters[et]
	if !ok {
		return nil
	}
	return a.CanonicalFields()
}

// SharedFields returns the fields reported by every given entity type, in canonical order.
// 혼합 업종 섹터의 상위 합산 대상 필드
func (r *Registry) SharedFields(types []contracts.EntityType) []contracts.Field {
	if len(types) == 0 {
		return nil
	}

	counts := make(map[contracts.Field]int)
	distinct := uniqueTypes(types)
	for _, et := range distinct {
		for _, f := range r.CanonicalFields(et) {
			counts[f]++
		}
	}

	var shared []contracts.Field
	for _, f := range contracts.AllFields() {
		if counts[f] == len(distinct) {
			shared = append(shared, f)
		}
	}
	return shared
}

func uniqueTypes(types []contracts.EntityType) []contracts.EntityType {
	set := make(map[contracts.EntityType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	out := make([]contracts.EntityType, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

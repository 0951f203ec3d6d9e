package sector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sectorlens/internal/contracts"
)

func testMappings() []contracts.SectorMapping {
	return []contracts.SectorMapping{
		{Ticker: "VCB", SectorCode: "BANK", EntityType: contracts.EntityBank},
		{Ticker: "ACB", SectorCode: "BANK", EntityType: contracts.EntityBank},
		{Ticker: "FPT", SectorCode: "TECH", EntityType: contracts.EntityCompany},
		{Ticker: "CMG", SectorCode: "TECH", EntityType: contracts.EntityCompany},
		{Ticker: "ELC", SectorCode: "TECH", EntityType: contracts.EntityCompany},
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(testMappings())
	require.NoError(t, err)

	assert.Equal(t, 5, reg.Len())
	assert.Equal(t, []string{"BANK", "TECH"}, reg.Sectors())
	assert.Equal(t, []string{"ACB", "VCB"}, reg.TickersOf("BANK"))
	assert.Equal(t, []string{"CMG", "FPT"}, reg.Peers("ELC"))
	assert.Empty(t, reg.TickersOf("NONE"))

	code, ok := reg.SectorOf("FPT")
	require.True(t, ok)
	assert.Equal(t, "TECH", code)

	et, ok := reg.EntityTypeOf("VCB")
	require.True(t, ok)
	assert.Equal(t, contracts.EntityBank, et)

	_, ok = reg.SectorOf("XYZ")
	assert.False(t, ok)
	assert.Nil(t, reg.Peers("XYZ"))
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mappings []contracts.SectorMapping
		wantErr  bool
	}{
		{
			name:     "identical duplicate accepted",
			mappings: append(testMappings(), contracts.SectorMapping{Ticker: "VCB", SectorCode: "BANK", EntityType: contracts.EntityBank}),
			wantErr:  false,
		},
		{
			name:     "conflicting sector",
			mappings: append(testMappings(), contracts.SectorMapping{Ticker: "VCB", SectorCode: "TECH", EntityType: contracts.EntityBank}),
			wantErr:  true,
		},
		{
			name:     "empty sector code",
			mappings: []contracts.SectorMapping{{Ticker: "AAA", SectorCode: " ", EntityType: contracts.EntityCompany}},
			wantErr:  true,
		},
		{
			name:     "empty ticker",
			mappings: []contracts.SectorMapping{{Ticker: "", SectorCode: "X", EntityType: contracts.EntityCompany}},
			wantErr:  true,
		},
		{
			name:     "unknown entity type",
			mappings: []contracts.SectorMapping{{Ticker: "AAA", SectorCode: "X", EntityType: "fund"}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.mappings)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, contracts.ErrConfiguration))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	reg, err := NewRegistry(testMappings())
	require.NoError(t, err)

	tickers := reg.TickersOf("BANK")
	tickers[0] = "MUTATED"
	assert.Equal(t, []string{"ACB", "VCB"}, reg.TickersOf("BANK"))
}

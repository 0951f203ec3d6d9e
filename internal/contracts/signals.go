package contracts

import "time"

// SignalType is the BUY/HOLD/SELL classification
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalHold SignalType = "HOLD"
	SignalSell SignalType = "SELL"
)

// Rank orders signals from most bearish (0) to most bullish (2)
func (s SignalType) Rank() int {
	switch s {
	case SignalSell:
		return 0
	case SignalHold:
		return 1
	case SignalBuy:
		return 2
	default:
		return -1
	}
}

// ComponentScores holds component scores keyed by component name (0~100)
type ComponentScores map[string]float64

// SectorScore is the output of one scorer for a sector and period/date
type SectorScore struct {
	SectorCode string          `json:"sector_code"`
	Date       time.Time       `json:"date"`
	Total      float64         `json:"total"`
	Components ComponentScores `json:"components"`
}

// ScoreRecord combines FA and TA scores for one sector-period
// ⭐ SSOT: Signal Generator 입력/출력
type ScoreRecord struct {
	SectorCode    string          `json:"sector_code"`
	Period        time.Time       `json:"period"`
	ValuationDate *time.Time      `json:"valuation_date,omitempty"`
	FATotalScore  *float64        `json:"fa_total_score,omitempty"`
	TATotalScore  *float64        `json:"ta_total_score,omitempty"`
	CombinedScore float64         `json:"combined_score"`
	FAWeight      float64         `json:"fa_weight"`
	TAWeight      float64         `json:"ta_weight"`
	FAComponents  ComponentScores `json:"fa_components,omitempty"`
	TAComponents  ComponentScores `json:"ta_components,omitempty"`
}

// Signal is the classification emitted for one sector-period
type Signal struct {
	SectorCode     string     `json:"sector_code"`
	Period         time.Time  `json:"period"`
	Signal         SignalType `json:"signal"`
	SignalStrength int        `json:"signal_strength"` // 1~5
	Rationale      string     `json:"rationale"`
}

// SectorSignal is one row of the ScoreRecord + Signal output table
type SectorSignal struct {
	Score  ScoreRecord `json:"score"`
	Signal Signal      `json:"signal"`
}

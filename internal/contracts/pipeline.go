package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 요약, 출력 테이블 메타데이터에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   FA aggregate → TA aggregate → FA score → TA score → combine → signal → persist

// Stage represents a pipeline stage
type Stage string

const (
	// StageFAAggregate 섹터별 재무 합산 및 비율/성장률
	// 위치: internal/fundamental/
	StageFAAggregate Stage = "FA_AGGREGATE"

	// StageTAAggregate 시총 가중 밸류에이션 멀티플 및 히스토리 백분위
	// 위치: internal/valuation/
	StageTAAggregate Stage = "TA_AGGREGATE"

	// StageFAScore 재무 컴포넌트 점수 (0~100)
	// 위치: internal/scoring/
	StageFAScore Stage = "FA_SCORE"

	// StageTAScore 밸류에이션/모멘텀/브레드스 점수 (0~100)
	// 위치: internal/scoring/
	StageTAScore Stage = "TA_SCORE"

	// StageCombine FA/TA 섹터 가중 결합
	// 위치: internal/signal/
	StageCombine Stage = "COMBINE"

	// StageSignal BUY/HOLD/SELL 분류
	// 위치: internal/signal/
	StageSignal Stage = "SIGNAL"

	// StagePersist 출력 테이블 저장 (atomic)
	// 위치: internal/store/
	StagePersist Stage = "PERSIST"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Description returns Korean description of the stage
func (s Stage) Description() string {
	switch s {
	case StageFAAggregate:
		return "섹터 재무 합산"
	case StageTAAggregate:
		return "섹터 밸류에이션 집계"
	case StageFAScore:
		return "FA 점수"
	case StageTAScore:
		return "TA 점수"
	case StageCombine:
		return "점수 결합"
	case StageSignal:
		return "시그널 생성"
	case StagePersist:
		return "결과 저장"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageFAAggregate,
		StageTAAggregate,
		StageFAScore,
		StageTAScore,
		StageCombine,
		StageSignal,
		StagePersist,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// StageResult represents the result of a single stage execution
type StageResult struct {
	Stage       Stage  `json:"stage"`
	Success     bool   `json:"success"`
	InputCount  int    `json:"input_count"`
	OutputCount int    `json:"output_count"`
	Duration    int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}

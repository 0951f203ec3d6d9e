package contracts

import "testing"

func TestSignalType_Rank(t *testing.T) {
	if !(SignalSell.Rank() < SignalHold.Rank() && SignalHold.Rank() < SignalBuy.Rank()) {
		t.Errorf("unexpected rank order: sell=%d hold=%d buy=%d",
			SignalSell.Rank(), SignalHold.Rank(), SignalBuy.Rank())
	}
	if SignalType("WAIT").Rank() != -1 {
		t.Error("unknown signal should rank -1")
	}
}

func TestAllStages_Order(t *testing.T) {
	stages := AllStages()
	if stages[0] != StageFAAggregate || stages[len(stages)-1] != StagePersist {
		t.Errorf("unexpected stage order: %v", stages)
	}
	for _, s := range stages {
		if !IsValidStage(string(s)) {
			t.Errorf("stage %s should be valid", s)
		}
		if s.Description() == "알 수 없음" {
			t.Errorf("stage %s has no description", s)
		}
	}
	if IsValidStage("S0_DATA_QUALITY") {
		t.Error("unexpected stage accepted")
	}
}

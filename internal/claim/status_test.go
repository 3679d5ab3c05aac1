package claim

import "testing"

func TestStageOf_Exhaustive(t *testing.T) {
	t.Parallel()

	want := map[Status]Stage{
		StatusDraft:        StageIntake,
		StatusSubmitted:    StageVerification,
		StatusVerification: StageVerification,
		StatusEvaluation:   StageProcessing,
		StatusNegotiation:  StageNegotiation,
		StatusCourt:        StageLegal,
		StatusResolved:     StageCompleted,
		StatusRejected:     StageCompleted,
	}

	if len(want) != len(Statuses) {
		t.Fatalf("test covers %d statuses, domain has %d", len(want), len(Statuses))
	}
	for _, s := range Statuses {
		if got := StageOf(s); got != want[s] {
			t.Errorf("StageOf(%s) = %s, want %s", s, got, want[s])
		}
	}
}

func TestStageOf_UnknownDegrades(t *testing.T) {
	t.Parallel()

	if got := StageOf(Status("garbage")); got != StageIntake {
		t.Errorf("StageOf(garbage) = %s, want %s", got, StageIntake)
	}
}

func TestOwnerOf_Exhaustive(t *testing.T) {
	t.Parallel()

	want := map[Status]Party{
		StatusDraft:        PartyMember,
		StatusSubmitted:    PartyStaff,
		StatusVerification: PartyStaff,
		StatusEvaluation:   PartyStaff,
		StatusNegotiation:  PartyStaff,
		StatusCourt:        PartySystem,
		StatusResolved:     PartySystem,
		StatusRejected:     PartySystem,
	}

	if len(want) != len(Statuses) {
		t.Fatalf("test covers %d statuses, domain has %d", len(want), len(Statuses))
	}
	for _, s := range Statuses {
		if got := OwnerOf(s); got != want[s] {
			t.Errorf("OwnerOf(%s) = %s, want %s", s, got, want[s])
		}
	}
}

func TestOwnerOf_UnknownDegrades(t *testing.T) {
	t.Parallel()

	if got := OwnerOf(Status("garbage")); got != PartySystem {
		t.Errorf("OwnerOf(garbage) = %s, want %s", got, PartySystem)
	}
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	for _, s := range Statuses {
		want := s == StatusResolved || s == StatusRejected
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
}

func TestKnown(t *testing.T) {
	t.Parallel()

	for _, s := range Statuses {
		if !s.Known() {
			t.Errorf("%s.Known() = false, want true", s)
		}
	}
	if Status("garbage").Known() {
		t.Error("garbage status reported as known")
	}
}

func TestStuckThreshold_OnlyActiveStatuses(t *testing.T) {
	t.Parallel()

	// Draft is the member's own pace; terminal statuses cannot be stuck.
	for _, s := range []Status{StatusDraft, StatusResolved, StatusRejected} {
		if _, ok := StuckThreshold(s); ok {
			t.Errorf("StuckThreshold(%s) defined, want undefined", s)
		}
	}
	for _, s := range []Status{StatusSubmitted, StatusVerification, StatusEvaluation, StatusNegotiation, StatusCourt} {
		d, ok := StuckThreshold(s)
		if !ok {
			t.Errorf("StuckThreshold(%s) undefined, want defined", s)
		}
		if d <= 0 {
			t.Errorf("StuckThreshold(%s) = %d, want > 0", s, d)
		}
	}
}

package claim

import "testing"

func TestAllowed_SelfTransition(t *testing.T) {
	t.Parallel()

	for _, s := range Statuses {
		if !Allowed(s, s) {
			t.Errorf("Allowed(%s, %s) = false, want true", s, s)
		}
	}
}

func TestAllowed_Graph(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusEvaluation, StatusResolved, true},
		{StatusDraft, StatusResolved, false},
		{StatusDraft, StatusSubmitted, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusSubmitted, StatusCourt, false},
		{StatusVerification, StatusSubmitted, true},
		{StatusNegotiation, StatusCourt, true},
		{StatusCourt, StatusNegotiation, true},
		{StatusResolved, StatusEvaluation, true},
		{StatusResolved, StatusDraft, false},
		{StatusRejected, StatusSubmitted, true},
		{StatusRejected, StatusResolved, false},
	}
	for _, tt := range tests {
		if got := Allowed(tt.from, tt.to); got != tt.want {
			t.Errorf("Allowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransitionsFrom_EveryStatusHasMoves(t *testing.T) {
	t.Parallel()

	// Every status, terminal ones included, has at least one legal move;
	// terminal statuses reopen into the evaluation path.
	for _, s := range Statuses {
		if len(TransitionsFrom(s)) == 0 {
			t.Errorf("TransitionsFrom(%s) is empty", s)
		}
	}
}

func TestTransitionsFrom_ReturnsCopy(t *testing.T) {
	t.Parallel()

	first := TransitionsFrom(StatusEvaluation)
	first[0] = StatusDraft
	second := TransitionsFrom(StatusEvaluation)
	if second[0] == StatusDraft {
		t.Error("mutating TransitionsFrom result leaked into the graph")
	}
}

func TestTransitionsFrom_UnknownStatus(t *testing.T) {
	t.Parallel()

	if got := TransitionsFrom(Status("garbage")); got != nil {
		t.Errorf("TransitionsFrom(garbage) = %v, want nil", got)
	}
}

package models

import "testing"

func TestLaagStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from LaagStatus
		to   LaagStatus
		want bool
	}{
		{StatusPlanning, StatusCompleted, true},
		{StatusPlanning, StatusCancelled, true},
		{StatusPlanning, StatusPlanning, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPlanning, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCancelled, StatusPlanning, false},
		{LaagStatus("Draft"), StatusCompleted, false},
		{StatusPlanning, LaagStatus("Archived"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestLaagStatus_IsTerminal(t *testing.T) {
	if StatusPlanning.IsTerminal() {
		t.Error("Planning should not be terminal")
	}
	if !StatusCompleted.IsTerminal() {
		t.Error("Completed should be terminal")
	}
	if !StatusCancelled.IsTerminal() {
		t.Error("Cancelled should be terminal")
	}
}

func TestLaagStatus_Valid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if LaagStatus("planning").Valid() {
		t.Error("status match is case-sensitive")
	}
}

func TestPrivacy_Valid(t *testing.T) {
	if !PrivacyPublic.Valid() || !PrivacyGroupOnly.Valid() {
		t.Error("expected both privacy values to be valid")
	}
	if Privacy("private").Valid() {
		t.Error("unexpected privacy value accepted")
	}
}

func TestLaag_Cost(t *testing.T) {
	l := Laag{EstimatedCost: 40}
	if got := l.Cost(); got != 40 {
		t.Errorf("Cost() without actual = %v, want 40", got)
	}
	actual := 55.5
	l.ActualCost = &actual
	if got := l.Cost(); got != 55.5 {
		t.Errorf("Cost() with actual = %v, want 55.5", got)
	}
}

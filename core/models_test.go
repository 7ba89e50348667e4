package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "Verify Numerical Reasoning 18 Yes Yes Ability & Aptitude Problem Solving"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestAssessmentRecord_CompositeText(t *testing.T) {
	tests := []struct {
		name   string
		record AssessmentRecord
		want   string
	}{
		{
			name: "all fields",
			record: AssessmentRecord{
				Name:              "Python (New)",
				DurationMinutes:   IntPtr(11),
				RemoteSupported:   true,
				AdaptiveSupported: false,
				TestTypes:         []string{"Knowledge & Skills"},
				Skills:            "Technical Skills",
				Description:       "Multi-choice test.",
			},
			want: "Python (New) 11 Yes No Knowledge & Skills Technical Skills Multi-choice test.",
		},
		{
			name: "absent duration keeps its position",
			record: AssessmentRecord{
				Name:      "OPQ32r",
				TestTypes: []string{"Personality"},
			},
			want: "OPQ32r  No No Personality  ",
		},
		{
			name: "multiple test types are space joined",
			record: AssessmentRecord{
				Name:              "Sim",
				DurationMinutes:   IntPtr(0),
				AdaptiveSupported: true,
				TestTypes:         []string{"Simulations", "Cognitive"},
			},
			want: "Sim 0 No Yes Simulations Cognitive  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.CompositeText(); got != tt.want {
				t.Errorf("CompositeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryConstraints_Active(t *testing.T) {
	if (QueryConstraints{}).Active() {
		t.Error("zero constraints should not be active")
	}
	if !(QueryConstraints{MaxDurationMinutes: IntPtr(30)}).Active() {
		t.Error("duration ceiling should be active")
	}
	if !(QueryConstraints{RequireRemote: true}).Active() {
		t.Error("remote requirement should be active")
	}
	if !(QueryConstraints{RequireAdaptive: true}).Active() {
		t.Error("adaptive requirement should be active")
	}
}

func TestRoundScore(t *testing.T) {
	tests := []struct {
		in   float32
		want float64
	}{
		{0.123456, 0.1235},
		{-0.99994, -0.9999},
		{1, 1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundScore(tt.in); got != tt.want {
			t.Errorf("RoundScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseYesNo(t *testing.T) {
	for _, s := range []string{"Yes", "yes", " YES "} {
		if !ParseYesNo(s) {
			t.Errorf("ParseYesNo(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"No", "", "y", "nan"} {
		if ParseYesNo(s) {
			t.Errorf("ParseYesNo(%q) = true, want false", s)
		}
	}
}

func TestPrimaryTestType(t *testing.T) {
	r := AssessmentRecord{}
	if got := r.PrimaryTestType(); got != "" {
		t.Errorf("PrimaryTestType() = %q, want empty", got)
	}
	r.TestTypes = []string{"Cognitive", "Personality"}
	if got := r.PrimaryTestType(); got != "Cognitive" {
		t.Errorf("PrimaryTestType() = %q, want Cognitive", got)
	}
}

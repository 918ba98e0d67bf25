package matching

import "testing"

func intPtr(v int) *int { return &v }

func TestComposite(t *testing.T) {
	tests := []struct {
		name string
		sub  SubScores
		want int
	}{
		{
			name: "weighted sum",
			sub:  SubScores{Technical: intPtr(80), Experience: intPtr(60), Education: intPtr(100), Language: intPtr(100), Certificate: intPtr(40)},
			want: 76,
		},
		{
			name: "missing sub-scores count as 50",
			sub:  SubScores{Technical: intPtr(100)},
			want: 70,
		},
		{
			name: "all missing",
			want: 50,
		},
		{
			name: "clamped",
			sub:  SubScores{Technical: intPtr(140), Experience: intPtr(-10), Education: intPtr(100), Language: intPtr(100), Certificate: intPtr(100)},
			want: 75,
		},
		{
			name: "rounds up above half",
			sub:  SubScores{Technical: intPtr(72), Experience: intPtr(0), Education: intPtr(0), Language: intPtr(0), Certificate: intPtr(0)},
			want: 29,
		},
		{
			name: "exact half rounds to even",
			sub:  SubScores{Technical: intPtr(0), Experience: intPtr(10), Education: intPtr(0), Language: intPtr(0), Certificate: intPtr(0)},
			want: 2,
		},
		{
			name: "exact half rounds up to even",
			sub:  SubScores{Technical: intPtr(0), Experience: intPtr(14), Education: intPtr(0), Language: intPtr(0), Certificate: intPtr(0)},
			want: 4,
		},
		{
			name: "float sum just above half rounds up",
			sub:  SubScores{Technical: intPtr(94), Experience: intPtr(84), Education: intPtr(72), Language: intPtr(4), Certificate: intPtr(47)},
			want: 75,
		},
		{
			name: "float sum just below half rounds down",
			sub:  SubScores{Technical: intPtr(47), Experience: intPtr(70), Education: intPtr(26), Language: intPtr(25), Certificate: intPtr(8)},
			want: 43,
		},
		{
			name: "float sum above half with small weights",
			sub:  SubScores{Technical: intPtr(51), Experience: intPtr(14), Education: intPtr(12), Language: intPtr(87), Certificate: intPtr(41)},
			want: 39,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Composite(tt.sub); got != tt.want {
				t.Fatalf("Composite() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewAssessmentResolvesSubScores(t *testing.T) {
	a := NewAssessment(SubScores{Technical: intPtr(90), Language: intPtr(120)})

	if a.Score != Composite(SubScores{Technical: intPtr(90), Language: intPtr(120)}) {
		t.Fatalf("unexpected score %d", a.Score)
	}
	if *a.SubScores.Experience != DefaultSubScore {
		t.Fatalf("expected default experience, got %d", *a.SubScores.Experience)
	}
	if *a.SubScores.Language != 100 {
		t.Fatalf("expected clamped language, got %d", *a.SubScores.Language)
	}
}

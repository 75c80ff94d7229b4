package pgn

import "testing"

func TestNormalizeTermination(t *testing.T) {
	tests := []struct {
		raw  string
		want Termination
	}{
		{"Time forfeit", TerminationTimeForfeit},
		{"Abandoned", TerminationAbandonment},
		{"Normal", TerminationOther}, // context-free Normal is unmatchable
		{"Rules infraction", TerminationOther},
		{"Unterminated", TerminationOther},
		{"won by checkmate", TerminationCheckmate},
		{"opp resigned", TerminationResignation},
		{"draw by agreement", TerminationDrawByRule},
		{"stalemate", TerminationDrawByRule},
		{"threefold repetition", TerminationDrawByRule},
		{"insufficient material", TerminationDrawByRule},
		{"", TerminationOther},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeTermination(tt.raw); got != tt.want {
				t.Errorf("NormalizeTermination(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

// Re-running normalization over already-normalized text must yield the
// same category.
func TestNormalizeTerminationIdempotent(t *testing.T) {
	categories := []Termination{
		TerminationCheckmate,
		TerminationResignation,
		TerminationTimeForfeit,
		TerminationDrawByRule,
		TerminationAbandonment,
		TerminationOther,
	}
	for _, c := range categories {
		if got := NormalizeTermination(string(c)); got != c {
			t.Errorf("NormalizeTermination(%q) = %s, not idempotent", c, got)
		}
	}
}

func TestResolveTermination(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		outcome  Outcome
		movetext string
		want     Termination
	}{
		{"normal draw", "Normal", OutcomeDraw, "1. e4 e5", TerminationDrawByRule},
		{"normal decisive mate", "Normal", OutcomeWin, "1. f3 e5 2. g4 Qh4#", TerminationCheckmate},
		{"normal decisive no mate", "Normal", OutcomeLoss, "1. e4 e5", TerminationResignation},
		{"empty tag decisive", "", OutcomeWin, "1. e4 e5", TerminationResignation},
		{"flagged", "Time forfeit", OutcomeLoss, "1. e4 e5", TerminationTimeForfeit},
		{"abandoned", "Abandoned", OutcomeLoss, "", TerminationAbandonment},
		{"cheat flag", "Rules infraction", OutcomeWin, "1. e4", TerminationOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTermination(tt.raw, tt.outcome, tt.movetext); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTimeClass(t *testing.T) {
	tests := []struct {
		timeControl string
		want        string
	}{
		{"15+0", "UltraBullet"},
		{"30+0", "Bullet"},
		{"60+1", "Bullet"},
		{"180+0", "Blitz"},
		{"300+3", "Blitz"},
		{"600+0", "Rapid"},
		{"900+10", "Rapid"},
		{"1800+20", "Classical"},
		{"-", "Classical"},
		{"", "Classical"},
		{"garbage", "Classical"},
	}
	for _, tt := range tests {
		t.Run(tt.timeControl, func(t *testing.T) {
			if got := TimeClass(tt.timeControl); got != tt.want {
				t.Errorf("TimeClass(%q) = %s, want %s", tt.timeControl, got, tt.want)
			}
		})
	}
}

func TestOpeningName(t *testing.T) {
	tests := []struct {
		opening string
		eco     string
		want    string
	}{
		{"Sicilian Defense: Najdorf Variation", "B90", "Sicilian Defense: Najdorf Variation"},
		{"?", "B90", "Semi-Open Game"},
		{"", "E60", "Indian Defence"},
		{"", "A04", "Flank Opening"},
		{"", "C50", "Open Game"},
		{"", "D35", "Closed Game"},
		{"", "", "Unknown"},
		{"?", "", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.opening+"/"+tt.eco, func(t *testing.T) {
			if got := OpeningName(tt.opening, tt.eco); got != tt.want {
				t.Errorf("OpeningName(%q, %q) = %s, want %s", tt.opening, tt.eco, got, tt.want)
			}
		})
	}
}

package pgn

import "strings"

// Termination is the normalized reason a game ended
type Termination string

const (
	TerminationCheckmate   Termination = "checkmate"
	TerminationResignation Termination = "resignation"
	TerminationTimeForfeit Termination = "time forfeit"
	TerminationDrawByRule  Termination = "draw-by-rule"
	TerminationAbandonment Termination = "abandonment"
	TerminationOther       Termination = "other"
)

// NormalizeTermination maps free termination text to one of the fixed
// categories by keyword matching. It is idempotent: feeding it an already
// normalized category returns the same category. Unmatched text maps to
// "other" rather than being discarded.
func NormalizeTermination(raw string) Termination {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "time"):
		return TerminationTimeForfeit
	case strings.Contains(s, "abandon"):
		return TerminationAbandonment
	// draw keywords before "mate": "stalemate" must not match checkmate
	case strings.Contains(s, "draw"),
		strings.Contains(s, "stalemate"),
		strings.Contains(s, "repetition"),
		strings.Contains(s, "insufficient"),
		strings.Contains(s, "agreement"),
		strings.Contains(s, "50"):
		return TerminationDrawByRule
	case strings.Contains(s, "mate"):
		return TerminationCheckmate
	case strings.Contains(s, "resign"):
		return TerminationResignation
	}
	return TerminationOther
}

// ResolveTermination normalizes a Termination tag with game context.
// Lichess reports decisive over-the-board finishes as just "Normal", which
// covers both checkmate and resignation; the movetext disambiguates, since
// a mating move carries the "#" marker.
func ResolveTermination(raw string, outcome Outcome, movetext string) Termination {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "normal" || s == "" {
		if outcome == OutcomeDraw {
			return TerminationDrawByRule
		}
		if endsInMate(movetext) {
			return TerminationCheckmate
		}
		return TerminationResignation
	}
	return NormalizeTermination(raw)
}

// timeClassBuckets: base seconds thresholds for lichess speed categories
const (
	bulletBaseSeconds    = 30
	blitzBaseSeconds     = 180
	rapidBaseSeconds     = 600
	classicalBaseSeconds = 1800
)

// TimeClass buckets a PGN TimeControl tag ("300+3", "-" for unlimited)
// into the familiar speed categories by base seconds.
func TimeClass(timeControl string) string {
	if timeControl == "" || timeControl == "-" {
		return "Classical"
	}
	base := timeControl
	if i := strings.Index(timeControl, "+"); i >= 0 {
		base = timeControl[:i]
	}
	seconds := 0
	for _, r := range base {
		if r < '0' || r > '9' {
			return "Classical"
		}
		seconds = seconds*10 + int(r-'0')
	}
	switch {
	case seconds < bulletBaseSeconds:
		return "UltraBullet"
	case seconds < blitzBaseSeconds:
		return "Bullet"
	case seconds < rapidBaseSeconds:
		return "Blitz"
	case seconds < classicalBaseSeconds:
		return "Rapid"
	default:
		return "Classical"
	}
}

// ecoFamilies names the five ECO volumes, used when the export carries an
// ECO code but no Opening tag
var ecoFamilies = map[byte]string{
	'A': "Flank Opening",
	'B': "Semi-Open Game",
	'C': "Open Game",
	'D': "Closed Game",
	'E': "Indian Defence",
}

// OpeningName resolves the opening label for a record: the Opening tag when
// present, the ECO volume family as a fallback, "Unknown" otherwise.
func OpeningName(openingTag, eco string) string {
	if openingTag != "" && openingTag != "?" {
		return openingTag
	}
	if eco != "" {
		if family, ok := ecoFamilies[eco[0]]; ok {
			return family
		}
	}
	return "Unknown"
}

package helpers

import "fmt"

// FormatScore formats a result split in chess score notation, e.g. "+12 -5 =3"
func FormatScore(wins, losses, draws int) string {
	return fmt.Sprintf("+%d -%d =%d", wins, losses, draws)
}

// FormatWinRate formats a percentage with one decimal, e.g. "52.4%"
func FormatWinRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

// FormatRatingChange formats a rating delta with an explicit sign
func FormatRatingChange(delta int) string {
	if delta > 0 {
		return fmt.Sprintf("+%d", delta)
	}
	if delta < 0 {
		return fmt.Sprintf("%d", delta)
	}
	return "±0"
}

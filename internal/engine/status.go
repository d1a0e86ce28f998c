package engine

// Band is the coarse daily status shown next to today's total.
type Band string

const (
	BandOK       Band = "ok"
	BandWarning  Band = "warning"
	BandCritical Band = "critical"
)

// Status reports today's band and the percentage of the limit used,
// capped at 100 for display.
func Status(totalGrams, dailyLimit float64) (Band, float64, error) {
	if dailyLimit <= 0 {
		return "", 0, invalidLimit(dailyLimit)
	}
	pct := totalGrams / dailyLimit * 100
	if pct > 100 {
		pct = 100
	}
	switch {
	case pct > 90:
		return BandCritical, pct, nil
	case pct > 70:
		return BandWarning, pct, nil
	}
	return BandOK, pct, nil
}

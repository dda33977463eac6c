// pkg/monitor/scoring.go
package monitor

// Outlier and status labels attached to scored series rows.
const (
	OutlierLow    = "Low"
	OutlierHigh   = "High"
	OutlierNormal = "Normal"

	StatusGood     = "Good"
	StatusWarning  = "Warning"
	StatusCritical = "Critical"
)

// missingCustomerThreshold is the missing-rate percentage below which a day
// is considered healthy. Double the threshold separates Warning from Critical.
const missingCustomerThreshold = 5.0

// SalesStats holds the series-level statistics behind daily sales scoring.
type SalesStats struct {
	Mean       float64
	Std        float64
	Q25        float64
	Q75        float64
	LowerBound float64
	UpperBound float64
}

// ScoreDailySales tags each day against the 1.5*IQR outlier band and attaches
// a quality score and z-score. Mutates rows in place and returns the
// series statistics.
func ScoreDailySales(rows []DailySales) SalesStats {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.DailySales
	}

	stats := SalesStats{
		Mean: Mean(values),
		Std:  SampleStd(values),
		Q25:  Quantile(values, 0.25),
		Q75:  Quantile(values, 0.75),
	}
	iqr := stats.Q75 - stats.Q25
	stats.LowerBound = stats.Q25 - 1.5*iqr
	stats.UpperBound = stats.Q75 + 1.5*iqr

	for i := range rows {
		r := &rows[i]
		switch {
		case r.DailySales < stats.LowerBound:
			r.IsOutlier = true
			r.OutlierType = OutlierLow
		case r.DailySales > stats.UpperBound:
			r.IsOutlier = true
			r.OutlierType = OutlierHigh
		default:
			r.OutlierType = OutlierNormal
		}
		if r.IsOutlier {
			r.QualityScore = 85
		} else {
			r.QualityScore = 100
		}
		r.ZScore = ZScore(r.DailySales, stats.Mean, stats.Std)
	}
	return stats
}

// scoreMissingRate decays the score by 10 points per percentage point over
// the threshold, floored at 50.
func scoreMissingRate(rate float64) float64 {
	if rate <= missingCustomerThreshold {
		return 100
	}
	score := 100 - (rate-missingCustomerThreshold)*10
	if score < 50 {
		return 50
	}
	return score
}

// missingRateStatus classifies a day's missing-customer rate.
func missingRateStatus(rate float64) string {
	switch {
	case rate <= missingCustomerThreshold:
		return StatusGood
	case rate <= missingCustomerThreshold*2:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// ScoreMissingCustomers attaches status and score to each day's
// missing-customer rate. Mutates rows in place.
func ScoreMissingCustomers(rows []CustomerCompleteness) {
	for i := range rows {
		rows[i].QualityStatus = missingRateStatus(rows[i].MissingCustomerRate)
		rows[i].QualityScore = scoreMissingRate(rows[i].MissingCustomerRate)
	}
}

// ScoreReturnRates flags days whose return rate sits more than two standard
// deviations from the series mean, and labels each day against the one-sigma
// band. Mutates rows in place and returns the series mean and std.
func ScoreReturnRates(rows []ReturnRate) (mean, std float64) {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.ReturnRate
	}
	mean = Mean(values)
	std = SampleStd(values)

	for i := range rows {
		r := &rows[i]
		r.ZScore = ZScore(r.ReturnRate, mean, std)
		r.IsAnomaly = r.ZScore > 2 || r.ZScore < -2
		switch {
		case r.ReturnRate < mean-std:
			r.ReturnStatus = OutlierLow
		case r.ReturnRate > mean+std:
			r.ReturnStatus = OutlierHigh
		default:
			r.ReturnStatus = OutlierNormal
		}
	}
	return mean, std
}

// ScoreProducts scores each product by its completeness issues: 100 with no
// issues, 75 with one, 50 with both. Mutates rows in place.
func ScoreProducts(rows []ProductQuality) {
	for i := range rows {
		r := &rows[i]
		r.QualityIssues = r.MissingDescription + r.InvalidStockCode
		switch r.QualityIssues {
		case 0:
			r.QualityScore = 100
		case 1:
			r.QualityScore = 75
		default:
			r.QualityScore = 50
		}
	}
}

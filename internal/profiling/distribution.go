package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// HistogramBins is the default bin count for distribution summaries.
const HistogramBins = 10

// Distribution describes the shape of a numeric column beyond its summary.
type Distribution struct {
	Q25        float64
	Q75        float64
	Skewness   float64
	Kurtosis   float64
	Outliers   int
	IsNormal   bool
	NormalityP float64
	Histogram  []Bin
}

// Bin is one histogram bucket, [Lower, Upper).
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// AnalyzeDistribution computes quartiles, shape moments, an IQR outlier
// count and a histogram. It needs at least two values.
func AnalyzeDistribution(data []float64, bins int) (Distribution, error) {
	var d Distribution

	mean, err := stats.Mean(data)
	if err != nil {
		return d, err
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return d, err
	}
	if d.Q25, err = stats.Percentile(data, 25); err != nil {
		return d, err
	}
	if d.Q75, err = stats.Percentile(data, 75); err != nil {
		return d, err
	}

	if stdDev > 0 {
		d.Skewness = calculateSkewness(data, mean, stdDev)
		d.Kurtosis = calculateKurtosis(data, mean, stdDev)
		d.IsNormal, d.NormalityP = testNormality(data)
	}
	d.Outliers = detectOutliers(data, d.Q25, d.Q75)
	d.Histogram = histogram(data, bins)
	return d, nil
}

// histogram bins data into equal-width buckets spanning its range. A
// constant column gets a single unit-wide bucket.
func histogram(data []float64, bins int) []Bin {
	if len(data) == 0 {
		return nil
	}
	if bins < 1 {
		bins = HistogramBins
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []Bin{{Lower: lo - 0.5, Upper: hi + 0.5, Count: len(sorted)}}
	}

	// stat.Histogram drops values equal to the last divider, so nudge it.
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	return out
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	// Adjusted Fisher-Pearson coefficient of skewness
	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	skewness *= correction

	return skewness
}

// calculateKurtosis computes sample excess kurtosis
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	// Sample kurtosis
	kurtosis := sumFourthDeviations / n

	// Convert to excess kurtosis (subtract 3 for normal distribution)
	excessKurtosis := kurtosis - 3

	// Bias correction for sample excess kurtosis
	if n > 3 {
		correction := (n - 1) / ((n - 2) * (n - 3))
		excessKurtosis = excessKurtosis*correction + 6/(n+1)
	}

	return excessKurtosis + 3 // Return total kurtosis (not excess)
}

// testNormality performs a simplified normality test
// This is an approximation - for production use, consider more sophisticated tests
func testNormality(data []float64) (isNormal bool, pValue float64) {
	if len(data) < 3 {
		return false, 1.0
	}

	// Get mean and standard deviation with error handling
	mean, err := stats.Mean(data)
	if err != nil {
		return false, 1.0
	}

	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return false, 1.0
	}

	// Shapiro-Wilk test approximation using skewness and kurtosis
	// This is a simplified version - real implementation would use proper SW test
	skewness := calculateSkewness(data, mean, stdDev)
	kurtosis := calculateKurtosis(data, mean, stdDev)

	// Combined test statistic (simplified)
	testStat := math.Abs(skewness) + math.Abs(kurtosis-3)/2

	// Approximate p-value using chi-square distribution
	// This is a rough approximation - production code should use proper statistical tables
	degreesFreedom := 2.0 // Approximation for combined skewness/kurtosis test
	chiDist := distuv.ChiSquared{K: degreesFreedom}
	pValue = 1 - chiDist.CDF(testStat*testStat)

	// Conservative threshold for normality
	isNormal = pValue > 0.05

	return isNormal, pValue
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}

// Package profile summarizes the distribution of each measured variable so
// the researcher can judge data quality before analysis.
package profile

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"phenolab/domain/colony"
	"phenolab/domain/frame"
)

// VariableProfile is the distribution summary of one variable
type VariableProfile struct {
	Variable string  `json:"variable"`
	Unit     string  `json:"unit,omitempty"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Outliers int     `json:"outliers"`
	JarqueP  float64 `json:"jarque_bera_p"`
	IsNormal bool    `json:"is_normal"`
}

// Frame profiles every variable column of a table. Columns without
// variable metadata (Bin, Entries in Bin) are skipped.
func Frame(f *frame.Frame, variables map[string]*colony.Variable) ([]VariableProfile, error) {
	profiles := make([]VariableProfile, 0, len(variables))
	for _, name := range f.Names() {
		v, ok := variables[name]
		if !ok {
			continue
		}
		col, err := f.Float(name)
		if err != nil {
			continue
		}
		p, err := profileValues(col.ValidValues(), col.Len())
		if err != nil {
			return nil, err
		}
		p.Variable = name
		p.Unit = v.Unit
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func profileValues(data []float64, total int) (VariableProfile, error) {
	p := VariableProfile{Count: len(data), Missing: total - len(data)}
	if len(data) == 0 {
		return p, nil
	}

	var err error
	if p.Mean, err = stats.Mean(data); err != nil {
		return p, err
	}
	if p.StdDev, err = stats.StandardDeviation(data); err != nil {
		return p, err
	}
	if p.Min, err = stats.Min(data); err != nil {
		return p, err
	}
	if p.Max, err = stats.Max(data); err != nil {
		return p, err
	}
	if p.Median, err = stats.Median(data); err != nil {
		return p, err
	}
	if p.Q25, err = stats.Percentile(data, 25); err != nil {
		return p, err
	}
	if p.Q75, err = stats.Percentile(data, 75); err != nil {
		return p, err
	}

	p.Skewness = skewness(data, p.Mean, p.StdDev)
	p.Kurtosis = kurtosis(data, p.Mean, p.StdDev)
	p.Outliers = countOutliers(data, p.Q25, p.Q75)
	p.JarqueP, p.IsNormal = jarqueBera(data, p.Skewness, p.Kurtosis)
	return p, nil
}

func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	return (sum / n) * math.Sqrt(n*(n-1)) / (n - 2)
}

func kurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 3
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}
	return sum / n
}

// jarqueBera tests normality from the sample moments. The statistic is
// asymptotically chi-squared with two degrees of freedom.
func jarqueBera(data []float64, skew, kurt float64) (pValue float64, isNormal bool) {
	n := float64(len(data))
	if n < 8 {
		return 1, true
	}
	jb := n / 6 * (skew*skew + (kurt-3)*(kurt-3)/4)
	chi := distuv.ChiSquared{K: 2}
	pValue = 1 - chi.CDF(jb)
	return pValue, pValue > 0.05
}

func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr
	count := 0
	for _, x := range data {
		if x < lower || x > upper {
			count++
		}
	}
	return count
}

package classifier

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes features to zero mean and unit variance.
// Features with zero variance keep a scale of 1.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes per-feature mean and population standard deviation
func FitScaler(X [][]float64) *StandardScaler {
	if len(X) == 0 {
		return &StandardScaler{}
	}
	d := len(X[0])
	s := &StandardScaler{
		Mean:  make([]float64, d),
		Scale: make([]float64, d),
	}
	col := make([]float64, len(X))
	for j := 0; j < d; j++ {
		for i, x := range X {
			col[i] = x[j]
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		s.Mean[j] = mean
		s.Scale[j] = 1
		if variance > 0 {
			s.Scale[j] = math.Sqrt(variance)
		}
	}
	return s
}

// Transform returns a standardized copy of x
func (s *StandardScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		if j < len(s.Mean) {
			out[j] = (v - s.Mean[j]) / s.Scale[j]
		}
	}
	return out
}

// TransformAll standardizes every row of X
func (s *StandardScaler) TransformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, x := range X {
		out[i] = s.Transform(x)
	}
	return out
}

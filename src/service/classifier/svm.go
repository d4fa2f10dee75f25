package classifier

import (
	"math"
	"math/rand/v2"

	"smell-bot/src/config"
)

// maxSweeps bounds SMO so non-separable data cannot loop indefinitely
const maxSweeps = 200

// SVM is an RBF-kernel support vector machine trained with simplified SMO.
// Probabilities come from a Platt sigmoid fit on the training decision values.
// Expects standardized input.
type SVM struct {
	C         float64 `json:"c"`
	Gamma     float64 `json:"gamma"`
	Tolerance float64 `json:"tolerance"`
	MaxPasses int     `json:"max_passes"`
	Seed      uint64  `json:"seed"`

	SupportVectors [][]float64 `json:"support_vectors"`
	Coef           []float64   `json:"coef"` // alpha_i * y_i
	Bias           float64     `json:"bias"`
	PlattA         float64     `json:"platt_a"`
	PlattB         float64     `json:"platt_b"`
	KernelGamma    float64     `json:"kernel_gamma"`
}

// NewSVM creates an untrained SVM
func NewSVM(cfg config.SVMConfig, seed uint64) *SVM {
	s := &SVM{
		C:         cfg.C,
		Gamma:     cfg.Gamma,
		Tolerance: cfg.Tolerance,
		MaxPasses: cfg.MaxPasses,
		Seed:      seed,
	}
	if s.C <= 0 {
		s.C = 1
	}
	if s.Tolerance <= 0 {
		s.Tolerance = 1e-3
	}
	if s.MaxPasses <= 0 {
		s.MaxPasses = 5
	}
	return s
}

// Name returns the classifier name
func (s *SVM) Name() string { return NameSVM }

// Params returns the SVM hyperparameters
func (s *SVM) Params() map[string]any {
	gamma := any(s.Gamma)
	if s.Gamma == 0 {
		gamma = "scale"
	}
	return map[string]any{"c": s.C, "gamma": gamma}
}

func rbf(a, b []float64, gamma float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return math.Exp(-gamma * d)
}

// Fit runs simplified SMO, keeps the support vectors and calibrates Platt scaling
func (s *SVM) Fit(X [][]float64, y []int) error {
	d, err := checkTrainingSet(X, y)
	if err != nil {
		return err
	}
	s.KernelGamma = s.Gamma
	if s.KernelGamma <= 0 {
		s.KernelGamma = 1 / float64(d)
	}

	n := len(X)
	ys := make([]float64, n)
	for i, l := range y {
		ys[i] = float64(2*l - 1)
	}

	K := make([][]float64, n)
	for i := range K {
		K[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			k := rbf(X[i], X[j], s.KernelGamma)
			K[i][j] = k
			K[j][i] = k
		}
	}

	alpha := make([]float64, n)
	var b float64
	decision := func(i int) float64 {
		f := b
		for k := 0; k < n; k++ {
			if alpha[k] != 0 {
				f += alpha[k] * ys[k] * K[k][i]
			}
		}
		return f
	}

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x5851f42d4c957f2d))
	C, tol := s.C, s.Tolerance
	passes := 0
	for sweep := 0; passes < s.MaxPasses && sweep < maxSweeps && n > 1; sweep++ {
		changed := 0
		for i := 0; i < n; i++ {
			Ei := decision(i) - ys[i]
			if !((ys[i]*Ei < -tol && alpha[i] < C) || (ys[i]*Ei > tol && alpha[i] > 0)) {
				continue
			}
			j := rng.IntN(n - 1)
			if j >= i {
				j++
			}
			Ej := decision(j) - ys[j]

			ai, aj := alpha[i], alpha[j]
			var L, H float64
			if ys[i] != ys[j] {
				L, H = math.Max(0, aj-ai), math.Min(C, C+aj-ai)
			} else {
				L, H = math.Max(0, ai+aj-C), math.Min(C, ai+aj)
			}
			if L == H {
				continue
			}
			eta := 2*K[i][j] - K[i][i] - K[j][j]
			if eta >= 0 {
				continue
			}

			newAj := aj - ys[j]*(Ei-Ej)/eta
			newAj = math.Min(H, math.Max(L, newAj))
			if math.Abs(newAj-aj) < 1e-5 {
				continue
			}
			newAi := ai + ys[i]*ys[j]*(aj-newAj)

			b1 := b - Ei - ys[i]*(newAi-ai)*K[i][i] - ys[j]*(newAj-aj)*K[i][j]
			b2 := b - Ej - ys[i]*(newAi-ai)*K[i][j] - ys[j]*(newAj-aj)*K[j][j]
			switch {
			case newAi > 0 && newAi < C:
				b = b1
			case newAj > 0 && newAj < C:
				b = b2
			default:
				b = (b1 + b2) / 2
			}
			alpha[i], alpha[j] = newAi, newAj
			changed++
		}
		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	s.SupportVectors = nil
	s.Coef = nil
	for i := range alpha {
		if alpha[i] > 1e-8 {
			s.SupportVectors = append(s.SupportVectors, append([]float64(nil), X[i]...))
			s.Coef = append(s.Coef, alpha[i]*ys[i])
		}
	}
	s.Bias = b

	decisions := make([]float64, n)
	for i := range X {
		decisions[i] = s.decision(X[i])
	}
	s.PlattA, s.PlattB = fitPlatt(decisions, y)
	return nil
}

func (s *SVM) decision(x []float64) float64 {
	f := s.Bias
	for k, sv := range s.SupportVectors {
		f += s.Coef[k] * rbf(sv, x, s.KernelGamma)
	}
	return f
}

// PredictProba maps the decision value through the Platt sigmoid
func (s *SVM) PredictProba(x []float64) [2]float64 {
	p := sigmoid(-(s.PlattA*s.decision(x) + s.PlattB))
	return [2]float64{1 - p, p}
}

// fitPlatt fits P(y=1|f) = 1/(1+exp(A*f+B)) by Newton's method with
// backtracking, using Platt's smoothed targets.
func fitPlatt(f []float64, y []int) (float64, float64) {
	var prior1, prior0 float64
	for _, l := range y {
		if l == 1 {
			prior1++
		} else {
			prior0++
		}
	}
	hi := (prior1 + 1) / (prior1 + 2)
	lo := 1 / (prior0 + 2)
	t := make([]float64, len(y))
	for i, l := range y {
		if l == 1 {
			t[i] = hi
		} else {
			t[i] = lo
		}
	}

	objective := func(A, B float64) float64 {
		var v float64
		for i := range f {
			z := f[i]*A + B
			if z >= 0 {
				v += t[i]*z + math.Log1p(math.Exp(-z))
			} else {
				v += (t[i]-1)*z + math.Log1p(math.Exp(z))
			}
		}
		return v
	}

	const (
		maxIter = 100
		minStep = 1e-10
		sigma   = 1e-12
		eps     = 1e-5
	)

	A, B := 0.0, math.Log((prior0+1)/(prior1+1))
	fval := objective(A, B)

	for it := 0; it < maxIter; it++ {
		h11, h22, h21, g1, g2 := sigma, sigma, 0.0, 0.0, 0.0
		for i := range f {
			z := f[i]*A + B
			var p, q float64
			if z >= 0 {
				e := math.Exp(-z)
				p, q = e/(1+e), 1/(1+e)
			} else {
				e := math.Exp(z)
				p, q = 1/(1+e), e/(1+e)
			}
			d2 := p * q
			h11 += f[i] * f[i] * d2
			h22 += d2
			h21 += f[i] * d2
			d1 := t[i] - p
			g1 += f[i] * d1
			g2 += d1
		}
		if math.Abs(g1) < eps && math.Abs(g2) < eps {
			break
		}

		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB

		step := 1.0
		for step >= minStep {
			nA, nB := A+step*dA, B+step*dB
			nf := objective(nA, nB)
			if nf < fval+1e-4*step*gd {
				A, B, fval = nA, nB, nf
				break
			}
			step /= 2
		}
		if step < minStep {
			break
		}
	}
	return A, B
}

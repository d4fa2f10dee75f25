// Package synthetic produces labeled training samples for bootstrapping a
// model before real labeled data exists.
package synthetic

import (
	"fmt"
	"math/rand/v2"

	"smell-bot/src/model"
	"smell-bot/src/service/features"
)

// Bounds of the generated metrics, inclusive
const (
	MinLines, MaxLines           = 5, 200
	MinParams, MaxParams         = 0, 15
	MinComplexity, MaxComplexity = 1, 20
	MinNesting, MaxNesting       = 0, 8
	MinSecurity, MaxSecurity     = 0, 5
)

// Smell cut-offs of the labeling rule
const (
	smellyLines      = 50
	smellyParams     = 6
	smellyComplexity = 10
)

// Draw is one set of generated method metrics
type Draw struct {
	Lines      int
	Params     int
	Complexity int
	Nesting    int
	Security   int
}

// Label applies the bootstrap labeling rule
func (d Draw) Label() int {
	if d.Lines > smellyLines || d.Params > smellyParams || d.Complexity > smellyComplexity || d.Security > 0 {
		return model.LabelSmelly
	}
	return model.LabelClean
}

func (d Draw) String() string {
	return fmt.Sprintf("lines=%d params=%d complexity=%d nesting=%d security=%d",
		d.Lines, d.Params, d.Complexity, d.Nesting, d.Security)
}

// Generator draws samples from a seeded source, so equal seeds give equal datasets
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator seeded with seed
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))}
}

func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

// Generate returns n labeled samples. Every other draw is restricted to the
// clean sub-ranges so both labels are well represented; labels always come
// from the rule, never from which branch produced the draw.
func (g *Generator) Generate(n int) []model.TrainingSample {
	samples := make([]model.TrainingSample, 0, n)
	for i := 0; i < n; i++ {
		var d Draw
		if i%2 == 0 {
			d = Draw{
				Lines:      g.between(MinLines, smellyLines),
				Params:     g.between(MinParams, smellyParams),
				Complexity: g.between(MinComplexity, smellyComplexity),
				Nesting:    g.between(MinNesting, MaxNesting),
				Security:   0,
			}
		} else {
			d = Draw{
				Lines:      g.between(MinLines, MaxLines),
				Params:     g.between(MinParams, MaxParams),
				Complexity: g.between(MinComplexity, MaxComplexity),
				Nesting:    g.between(MinNesting, MaxNesting),
				Security:   g.between(MinSecurity, MaxSecurity),
			}
		}

		samples = append(samples, model.TrainingSample{
			Features:    features.Extract(g.unit(d)),
			Label:       d.Label(),
			Description: d.String(),
		})
	}
	return samples
}

var (
	visibilities = []model.Visibility{model.VisibilityPublic, model.VisibilityProtected, model.VisibilityPrivate}
	categories   = []model.SecurityCategory{model.SecurityDangerousCall, model.SecurityInjectionRisk, model.SecurityOther}
	severities   = []model.Severity{model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical}
)

// unit materializes a draw as a one-class, one-method source unit with a randomized shape
func (g *Generator) unit(d Draw) model.SourceUnit {
	method := model.MethodMetric{
		ClassName:            "Synthetic",
		Name:                 "generated",
		StartLine:            1,
		LineCount:            d.Lines,
		ParameterCount:       d.Params,
		CyclomaticComplexity: d.Complexity,
		CognitiveComplexity:  d.Complexity + d.Nesting,
		Visibility:           visibilities[g.rng.IntN(len(visibilities))],
		IsStatic:             g.rng.Float64() < 0.2,
		HasReturnType:        g.rng.Float64() < 0.7,
	}

	class := model.ClassMetric{
		Name:          "Synthetic",
		LineCount:     d.Lines + g.between(0, 50),
		MethodCount:   g.between(1, 20),
		PropertyCount: g.between(0, 15),
	}
	if g.rng.Float64() < 0.5 {
		class.Parent = "Base"
	}
	for i := g.between(0, 3); i > 0; i-- {
		class.Interfaces = append(class.Interfaces, fmt.Sprintf("Contract%d", i))
	}

	security := make([]model.SecurityFinding, d.Security)
	for i := range security {
		security[i] = model.SecurityFinding{
			Category: categories[g.rng.IntN(len(categories))],
			Severity: severities[g.rng.IntN(len(severities))],
			Line:     1 + i,
		}
	}

	return model.SourceUnit{
		Path:      "synthetic.php",
		LineCount: class.LineCount,
		Methods:   []model.MethodMetric{method},
		Classes:   []model.ClassMetric{class},
		Security:  security,
		ParseOK:   true,
	}
}

// Vector builds the feature vector of a single public method with the given
// metrics inside a plain class, the same way Generate does.
func Vector(lines, params, complexity, nesting, security int) []float64 {
	unit := model.SourceUnit{
		Path:    "example.php",
		ParseOK: true,
		Methods: []model.MethodMetric{{
			ClassName:            "Example",
			Name:                 "example",
			LineCount:            lines,
			ParameterCount:       params,
			CyclomaticComplexity: complexity,
			CognitiveComplexity:  complexity + nesting,
			Visibility:           model.VisibilityPublic,
			HasReturnType:        true,
		}},
		Classes: []model.ClassMetric{{Name: "Example", LineCount: lines, MethodCount: 1}},
	}
	for i := 0; i < security; i++ {
		unit.Security = append(unit.Security, model.SecurityFinding{
			Category: model.SecurityDangerousCall,
			Severity: model.SeverityHigh,
			Line:     i + 1,
		})
	}
	return features.Extract(unit)
}

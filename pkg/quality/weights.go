package quality

import "github.com/fortitude-run/fortitude/pkg/research"

// Profile names a named weight set a caller can select by context
// instead of hand-assembling QualityWeights.
type Profile string

const (
	ProfileDefault           Profile = "default"
	ProfileResearchOptimized Profile = "research_optimized"
	ProfileTechnical         Profile = "technical"
	ProfileLearning          Profile = "learning"
)

// WeightsForProfile returns a fresh, normalized QualityWeights for the
// named profile, falling back to ProfileDefault for an unrecognized
// name. Every profile assigns all seven dimensions from
// research.AllQualityDimensions so Evaluate never scores an
// unweighted dimension.
func WeightsForProfile(p Profile) research.QualityWeights {
	var w research.QualityWeights
	switch p {
	case ProfileResearchOptimized:
		w = research.QualityWeights{
			research.DimRelevance:    0.25,
			research.DimAccuracy:     0.25,
			research.DimCompleteness: 0.20,
			research.DimCredibility:  0.15,
			research.DimTimeliness:   0.05,
			research.DimClarity:      0.05,
			research.DimSpecificity:  0.05,
		}
	case ProfileTechnical:
		w = research.QualityWeights{
			research.DimAccuracy:     0.30,
			research.DimSpecificity:  0.25,
			research.DimCompleteness: 0.20,
			research.DimRelevance:    0.15,
			research.DimClarity:      0.05,
			research.DimCredibility:  0.03,
			research.DimTimeliness:   0.02,
		}
	case ProfileLearning:
		w = research.QualityWeights{
			research.DimClarity:      0.30,
			research.DimCompleteness: 0.25,
			research.DimRelevance:    0.20,
			research.DimAccuracy:     0.15,
			research.DimSpecificity:  0.05,
			research.DimCredibility:  0.03,
			research.DimTimeliness:   0.02,
		}
	default:
		w = research.QualityWeights{
			research.DimRelevance:    1.0 / 7,
			research.DimAccuracy:     1.0 / 7,
			research.DimCompleteness: 1.0 / 7,
			research.DimClarity:      1.0 / 7,
			research.DimCredibility:  1.0 / 7,
			research.DimTimeliness:   1.0 / 7,
			research.DimSpecificity:  1.0 / 7,
		}
	}
	w.Normalize()
	return w
}

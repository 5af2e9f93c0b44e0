package hit

import (
	"sort"

	"github.com/gem-pasteur/macsylib/internal/config"
)

// BestHit selects the best representative of function among hits: hits
// whose own gene name equals function are preferred over exchangeables
// standing in for it, and within each of those two groups the hit ranking
// highest under criterion wins.
func BestHit(hits []ModelHit, function string, criterion config.BestHitCriterion) ModelHit {
	primary := make([]ModelHit, 0, len(hits))
	alt := make([]ModelHit, 0)
	for _, h := range hits {
		if h.Model.Gene(h.GeneRef).Name == function {
			primary = append(primary, h)
		} else {
			alt = append(alt, h)
		}
	}
	group := primary
	if len(group) == 0 {
		group = alt
	}
	sort.Slice(group, func(i, j int) bool { return rankBetter(group[i], group[j], criterion) })
	return group[0]
}

// rankBetter reports whether a ranks strictly ahead of b under criterion.
func rankBetter(a, b ModelHit, criterion config.BestHitCriterion) bool {
	switch criterion {
	case config.CriterionIEvalue:
		if a.Core.IEval != b.Core.IEval {
			return a.Core.IEval < b.Core.IEval
		}
	case config.CriterionProfileCoverage:
		if a.Core.ProfileCoverage != b.Core.ProfileCoverage {
			return a.Core.ProfileCoverage > b.Core.ProfileCoverage
		}
	case config.CriterionScore:
		fallthrough
	default:
		if a.Core.Score != b.Core.Score {
			return a.Core.Score > b.Core.Score
		}
	}
	// deterministic tie-break so output doesn't depend on ingestion order.
	return a.Core.HitID < b.Core.HitID
}

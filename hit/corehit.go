// Package hit implements the CoreHit value type and the ModelHit variant
// family, plus the per-hit scoring hook the cluster and system scorers
// call into.
package hit

import (
	"math"

	"github.com/gem-pasteur/macsylib/modeldef"
)

// epsilon is the float tolerance CoreHit.Equal uses when comparing scores.
const epsilon = 1e-3

// CoreHit is an immutable match between an HMM profile and one protein.
type CoreHit struct {
	GeneRef           modeldef.CoreGeneRef
	HitID             string
	SeqLength         int
	RepliconName      string
	Position          int
	IEval             float64
	Score             float64
	ProfileCoverage   float64
	SequenceCoverage  float64
	BeginMatch        int
	EndMatch          int
}

func floatEqual(a, b float64) bool { return math.Abs(a-b) < epsilon }

// Equal compares every field, with epsilon tolerance on the float fields.
func (h CoreHit) Equal(o CoreHit) bool {
	return h.GeneRef == o.GeneRef &&
		h.HitID == o.HitID &&
		h.SeqLength == o.SeqLength &&
		h.RepliconName == o.RepliconName &&
		h.Position == o.Position &&
		floatEqual(h.IEval, o.IEval) &&
		floatEqual(h.Score, o.Score) &&
		floatEqual(h.ProfileCoverage, o.ProfileCoverage) &&
		floatEqual(h.SequenceCoverage, o.SequenceCoverage) &&
		h.BeginMatch == o.BeginMatch &&
		h.EndMatch == o.EndMatch
}

// Less orders two hits: by hit_id lexicographically, unless the hit_ids
// are equal in which case by score.
func (h CoreHit) Less(o CoreHit) bool {
	if h.HitID != o.HitID {
		return h.HitID < o.HitID
	}
	return h.Score < o.Score
}

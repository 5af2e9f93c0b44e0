// Package system turns a combination.Combination into a validated System
// or a RejectedCandidate, and computes per-system scores.
package system

import (
	"github.com/gem-pasteur/macsylib/cluster"
	"github.com/gem-pasteur/macsylib/combination"
	"github.com/gem-pasteur/macsylib/internal/macerr"
	"github.com/gem-pasteur/macsylib/modeldef"
)

// System is a validated combination of clusters that satisfies its model's
// quorum and forbidden-gene rules.
type System struct {
	ID        int
	Model     *modeldef.Model
	Clusters  []*cluster.Cluster
	Score     float64
	Wholeness float64

	// hitIDs is the set of CoreHit ids covered by this system, used by the
	// solution selector's compatibility test ("Two systems are
	// compatible iff they share no CoreHit").
	hitIDs map[string]bool
	// HitPositions lists the positions of the system's hits, cluster by
	// cluster, for deterministic tie-break sorting; replicon names are not
	// part of it.
	HitPositions []int
}

// RejectedCandidate is a combination that failed validation, kept around
// so the multi-system re-combination pass can still build a
// system from it.
type RejectedCandidate struct {
	Model    *modeldef.Model
	Clusters []*cluster.Cluster
	Reason   string
}

// HitIDs returns the set of CoreHits this system covers, each keyed by its
// replicon name and hit_id joined with a NUL byte.
func (s *System) HitIDs() map[string]bool { return s.hitIDs }

// Compatible reports whether s and other share no CoreHit.
func (s *System) Compatible(other *System) bool {
	small, big := s.hitIDs, other.hitIDs
	if len(big) < len(small) {
		small, big = big, small
	}
	for id := range small {
		if big[id] {
			return false
		}
	}
	return true
}

func mandatoryAndAccessoryFunctions(model *modeldef.Model, combo combination.Combination) (mandatory map[string]bool, genesQuorum map[string]bool) {
	mandatory = make(map[string]bool)
	genesQuorum = make(map[string]bool)
	for _, c := range combo {
		for _, h := range c.Hits {
			switch h.Status {
			case modeldef.Mandatory:
				mandatory[h.FunctionName()] = true
				genesQuorum[h.FunctionName()] = true
			case modeldef.Accessory:
				genesQuorum[h.FunctionName()] = true
			}
		}
	}
	return mandatory, genesQuorum
}

func totalGeneCount(combo combination.Combination) int {
	n := 0
	for _, c := range combo {
		n += len(c.Hits)
	}
	return n
}

func hasForbiddenHit(combo combination.Combination) bool {
	for _, c := range combo {
		for _, h := range c.Hits {
			if h.Status == modeldef.Forbidden {
				return true
			}
		}
	}
	return false
}

func hitIDSet(combo combination.Combination) map[string]bool {
	ids := make(map[string]bool)
	for _, c := range combo {
		for _, h := range c.Hits {
			ids[h.Core.RepliconName+"\x00"+h.Core.HitID] = true
		}
	}
	return ids
}

func hitPositions(combo combination.Combination) []int {
	var positions []int
	for _, c := range combo {
		for _, h := range c.Hits {
			positions = append(positions, h.Core.Position)
		}
	}
	return positions
}

// Validate turns combo into a System if it satisfies model's quorum and
// forbidden-gene rules, or a RejectedCandidate otherwise.
func Validate(id int, model *modeldef.Model, combo combination.Combination) (*System, *RejectedCandidate, error) {
	if len(combo) == 0 {
		return nil, &RejectedCandidate{Model: model, Clusters: nil, Reason: "empty combination"}, nil
	}
	if hasForbiddenHit(combo) {
		return nil, &RejectedCandidate{Model: model, Clusters: combo, Reason: "contains a forbidden gene"}, nil
	}

	mandatoryFns, genesQuorumFns := mandatoryAndAccessoryFunctions(model, combo)
	if len(mandatoryFns) < model.MandatoryQuorum() {
		return nil, &RejectedCandidate{Model: model, Clusters: combo, Reason: "does not meet min_mandatory_genes_required"}, nil
	}
	if len(genesQuorumFns) < model.GenesQuorum() {
		return nil, &RejectedCandidate{Model: model, Clusters: combo, Reason: "does not meet min_genes_required"}, nil
	}
	if n := totalGeneCount(combo); n > model.MaxGenes() {
		return nil, &RejectedCandidate{Model: model, Clusters: combo, Reason: "exceeds max_nb_genes"}, nil
	}

	score, err := Score(combo)
	if err != nil {
		return nil, nil, err
	}
	wholeness := 0.0
	if max := model.MaxGenes(); max > 0 {
		wholeness = float64(len(genesQuorumFns)) / float64(max)
	}

	positions := hitPositions(combo)
	return &System{
		ID:           id,
		Model:        model,
		Clusters:     combo,
		Score:        score,
		Wholeness:    wholeness,
		hitIDs:       hitIDSet(combo),
		HitPositions: positions,
	}, nil, nil
}

// Score sums the per-cluster scores of combo.
func Score(combo combination.Combination) (float64, error) {
	total := 0.0
	for _, c := range combo {
		s, err := c.Score()
		if err != nil {
			return 0, macerr.Wrap(macerr.ModelInconsistency, "system.Score", c.Model.FQN, err)
		}
		total += s
	}
	return total, nil
}

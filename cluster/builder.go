package cluster

import (
	"sort"

	"github.com/gem-pasteur/macsylib/internal/config"
	"github.com/gem-pasteur/macsylib/hit"
	"github.com/gem-pasteur/macsylib/modeldef"
	"github.com/gem-pasteur/macsylib/replicon"
)

// scaffoldToCluster validates a candidate scaffold, returning (nil, nil)
// when the scaffold does not qualify as a cluster. The order of the
// checks below is load-bearing: an all-neutral scaffold of more than one
// gene is rejected before the single-hit/loner checks run.
func scaffoldToCluster(ids *IDGen, weights config.HitWeight, model *modeldef.Model, scaffold []hit.ModelHit) (*Cluster, error) {
	if len(scaffold) == 0 {
		return nil, nil
	}
	geneNames := make(map[string]bool, len(scaffold))
	for _, h := range scaffold {
		geneNames[h.Model.Gene(h.GeneRef).Name] = true
	}

	if len(geneNames) > 1 {
		allNeutral := true
		for _, h := range scaffold {
			if h.Status != modeldef.Neutral {
				allNeutral = false
				break
			}
		}
		if allNeutral {
			return nil, nil
		}
		return New(ids.Next(), weights, scaffold)
	}

	// Single gene type.
	if model.Gene(scaffold[0].GeneRef).Loner {
		// A group of one loner; it will be squashed at the true-loner
		// extraction step.
		return New(ids.Next(), weights, scaffold)
	}
	if model.MinGenesRequired == 1 {
		if scaffold[0].Status == modeldef.Neutral {
			return nil, nil
		}
		return New(ids.Next(), weights, scaffold)
	}
	return nil, nil
}

// BuildOnDistance groups hits by colocation alone. hits need
// not be pre-sorted: the builder sorts by (position asc, score desc) and
// deduplicates by position first, so the result is stable under any
// permutation of the input.
func BuildOnDistance(ids *IDGen, weights config.HitWeight, model *modeldef.Model, hits []hit.ModelHit, rep replicon.Info) ([]*Cluster, error) {
	if len(hits) == 0 {
		return nil, nil
	}
	sorted := dedupByPosition(sortByPositionThenScore(hits))

	var clusters []*Cluster
	scaffold := []hit.ModelHit{sorted[0]}
	previous := sorted[0]

	for _, h := range sorted[1:] {
		if colocates(previous, h, rep) {
			scaffold = append(scaffold, h)
		} else {
			c, err := scaffoldToCluster(ids, weights, model, scaffold)
			if err != nil {
				return nil, err
			}
			if c != nil {
				clusters = append(clusters, c)
			}
			scaffold = []hit.ModelHit{h}
		}
		previous = h
	}

	// Close the last scaffold.
	last, err := scaffoldToCluster(ids, weights, model, scaffold)
	if err != nil {
		return nil, err
	}
	if last != nil {
		clusters = append(clusters, last)
	} else if rep.Topology == replicon.Circular {
		if len(clusters) > 0 && colocates(scaffold[len(scaffold)-1], clusters[0].Hits[0], rep) {
			newCluster, err := New(ids.Next(), weights, scaffold)
			if err != nil {
				return nil, err
			}
			merged, err := Merge(ids.Next(), weights, newCluster, clusters[0])
			if err != nil {
				return nil, err
			}
			clusters[0] = merged
		} else if colocates(scaffold[len(scaffold)-1], sorted[0], rep) {
			scaffold = append(scaffold, sorted[0])
			extra, err := scaffoldToCluster(ids, weights, model, scaffold)
			if err != nil {
				return nil, err
			}
			if extra != nil {
				clusters = append(clusters, extra)
			}
		}
	}

	if rep.Topology == replicon.Circular && len(clusters) > 1 {
		tail := clusters[len(clusters)-1]
		head := clusters[0]
		// Skipped when only one cluster remains (tail == head): merging it
		// with itself would duplicate its hits and then drop it. The
		// circular-stitching order is load-bearing for stable output and
		// should not be reordered.
		if colocates(tail.Hits[len(tail.Hits)-1], head.Hits[0], rep) {
			merged, err := Merge(ids.Next(), weights, tail, head)
			if err != nil {
				return nil, err
			}
			clusters[0] = merged
			clusters = clusters[:len(clusters)-1]
		}
	}
	return clusters, nil
}

func sortByPositionThenScore(hits []hit.ModelHit) []hit.ModelHit {
	sorted := make([]hit.ModelHit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Core.Position != sorted[j].Core.Position {
			return sorted[i].Core.Position < sorted[j].Core.Position
		}
		return sorted[i].Core.Score > sorted[j].Core.Score
	})
	return sorted
}

func dedupByPosition(sorted []hit.ModelHit) []hit.ModelHit {
	out := sorted[:0:0]
	lastPos, have := 0, false
	for _, h := range sorted {
		if have && h.Core.Position == lastPos {
			continue
		}
		out = append(out, h)
		lastPos, have = h.Core.Position, true
	}
	return out
}

package cluster

import (
	"sort"

	"github.com/gem-pasteur/macsylib/internal/config"
	"github.com/gem-pasteur/macsylib/hit"
)

// isKeyGene reports whether h's raw gene name is in keyGenes.
func isKeyGene(h hit.ModelHit, keyGenes map[string]bool) bool {
	return keyGenes[h.Model.Gene(h.GeneRef).Name]
}

// closestKeyGeneIndex returns the index, within keyGeneHits, of the key-gene
// hit positionally closest to h. Ties go to the lower-position key gene.
func closestKeyGeneIndex(h hit.ModelHit, keyGeneHits []hit.ModelHit) int {
	best := 0
	bestDist := abs(h.Core.Position - keyGeneHits[0].Core.Position)
	for i := 1; i < len(keyGeneHits); i++ {
		d := abs(h.Core.Position - keyGeneHits[i].Core.Position)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SplitOnKeyGenes splits c into one sub-cluster per key-gene hit it
// contains, assigning every non-key hit to its positionally closest key
// gene. Returns nil if c has no key-gene hits.
func SplitOnKeyGenes(ids *IDGen, weights config.HitWeight, keyGenes map[string]bool, c *Cluster) ([]*Cluster, error) {
	var keyGeneHits, others []hit.ModelHit
	for _, h := range c.Hits {
		if isKeyGene(h, keyGenes) {
			keyGeneHits = append(keyGeneHits, h)
		} else {
			others = append(others, h)
		}
	}
	if len(keyGeneHits) == 0 {
		return nil, nil
	}
	// Sort key-gene hits by position so ties ("equidistant") break toward the
	// lower-position key gene.
	sort.SliceStable(keyGeneHits, func(i, j int) bool { return keyGeneHits[i].Core.Position < keyGeneHits[j].Core.Position })

	groups := make([][]hit.ModelHit, len(keyGeneHits))
	for _, h := range others {
		idx := closestKeyGeneIndex(h, keyGeneHits)
		groups[idx] = append(groups[idx], h)
	}

	var clusters []*Cluster
	for i, kg := range keyGeneHits {
		scaffold := append(groups[i], kg)
		sort.SliceStable(scaffold, func(a, b int) bool { return scaffold[a].Core.Position < scaffold[b].Core.Position })
		sub, err := scaffoldToCluster(ids, weights, c.Model, scaffold)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			clusters = append(clusters, sub)
		}
	}
	sort.SliceStable(clusters, func(i, j int) bool { return clusters[i].Hits[0].Core.Position < clusters[j].Hits[0].Core.Position })
	return clusters, nil
}

// BuildAroundKeyGenes implements the optional key-gene clustering mode over
// clusters already built by distance (c): discard any with no key-gene hit,
// keep any with exactly one, and split any with more than one.
func BuildAroundKeyGenes(ids *IDGen, weights config.HitWeight, keyGenes map[string]bool, c []*Cluster) ([]*Cluster, error) {
	var out []*Cluster
	for _, dc := range c {
		count := 0
		for _, h := range dc.Hits {
			if isKeyGene(h, keyGenes) {
				count++
			}
		}
		switch {
		case count == 0:
			continue
		case count == 1:
			out = append(out, dc)
		default:
			split, err := SplitOnKeyGenes(ids, weights, keyGenes, dc)
			if err != nil {
				return nil, err
			}
			out = append(out, split...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hits[0].Core.Position < out[j].Hits[0].Core.Position })
	return out, nil
}

package cluster

import (
	"github.com/grailbio/base/log"

	"github.com/gem-pasteur/macsylib/internal/config"
	"github.com/gem-pasteur/macsylib/hit"
)

// isTrueLoner reports whether c qualifies as a true loner cluster : every hit shares one gene name and that gene is declared loner.
func isTrueLoner(c *Cluster) bool {
	first := c.Hits[0].Model.Gene(c.Hits[0].GeneRef).Name
	for _, h := range c.Hits[1:] {
		if h.Model.Gene(h.GeneRef).Name != first {
			return false
		}
	}
	return c.Hits[0].Model.Gene(c.Hits[0].GeneRef).Loner
}

// ExtractTrueLoners separates clusters into true non-loner clusters and a
// registry of the best loner/multi-system representative per function.
// Multi-hit true-loner clusters are squashed into the registry, with a
// diagnostic logged for each.
func ExtractTrueLoners(ids *IDGen, weights config.HitWeight, criterion config.BestHitCriterion, clusters []*Cluster) (map[string]*Cluster, []*Cluster, error) {
	byFunction := make(map[string][]hit.ModelHit)
	var trueClusters []*Cluster

	for _, c := range clusters {
		if !isTrueLoner(c) {
			trueClusters = append(trueClusters, c)
			continue
		}
		if len(c.Hits) > 1 {
			log.Printf("squashing true-loner cluster %s (%d hits) into the loner registry", c.Hits[0].FunctionName(), len(c.Hits))
		}
		for _, h := range c.Hits {
			fn := h.FunctionName()
			byFunction[fn] = append(byFunction[fn], h)
		}
	}

	trueLoners := make(map[string]*Cluster, len(byFunction))
	for fn, hits := range byFunction {
		promoted := make([]hit.ModelHit, 0, len(hits))
		for i, h := range hits {
			counterpart := make([]hit.ModelHit, 0, len(hits)-1)
			for j, other := range hits {
				if j != i {
					counterpart = append(counterpart, other)
				}
			}
			var p hit.ModelHit
			var err error
			if h.Model.Gene(h.GeneRef).MultiSystem {
				p, err = hit.AsLonerMultiSystem(h, counterpart)
			} else {
				p, err = hit.AsLoner(h, counterpart)
			}
			if err != nil {
				return nil, nil, err
			}
			promoted = append(promoted, p)
		}
		best := hit.BestHit(promoted, fn, criterion)
		singleton, err := New(ids.Next(), weights, []hit.ModelHit{best})
		if err != nil {
			return nil, nil, err
		}
		trueLoners[fn] = singleton
	}
	return trueLoners, trueClusters, nil
}

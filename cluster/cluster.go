// Package cluster groups hits that colocalize on a replicon into Clusters,
// and extracts true-loner/multi-system hits into a registry of best
// representatives per function.
package cluster

import (
	"sync"

	"github.com/gem-pasteur/macsylib/internal/config"
	"github.com/gem-pasteur/macsylib/internal/macerr"
	"github.com/gem-pasteur/macsylib/hit"
	"github.com/gem-pasteur/macsylib/modeldef"
)

// IDGen hands out unique cluster ids within one run, the way
// fusion.GeneDB hands out dense GeneIDs.
type IDGen struct {
	mu   sync.Mutex
	next int
}

// Next returns the next unused id.
func (g *IDGen) Next() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next
	g.next++
	return id
}

// Cluster is an ordered sequence of hits sharing one replicon.
type Cluster struct {
	ID           int
	Model        *modeldef.Model
	RepliconName string
	Hits         []hit.ModelHit
	Weights      config.HitWeight

	scoreCache     *float64
	functionsCache map[string]bool
}

// New validates and builds a Cluster from hits. It is fatal for
// hits to span more than one replicon (MixedReplicon) or more than one
// model (ClusterModelMismatch).
func New(id int, weights config.HitWeight, hits []hit.ModelHit) (*Cluster, error) {
	if len(hits) == 0 {
		return nil, macerr.New(macerr.ModelInconsistency, "cluster.New", "", "cannot build a cluster from zero hits")
	}
	model := hits[0].Model
	replicon := hits[0].Core.RepliconName
	for _, h := range hits[1:] {
		if h.Core.RepliconName != replicon {
			return nil, macerr.New(macerr.MixedReplicon, "cluster.New", model.FQN, "hits span replicons "+replicon+" and "+h.Core.RepliconName)
		}
		if h.Model != model {
			return nil, macerr.New(macerr.ClusterModelMismatch, "cluster.New", model.FQN, "hits span more than one model")
		}
	}
	return &Cluster{ID: id, Model: model, RepliconName: replicon, Hits: hits, Weights: weights}, nil
}

// Merge prepends other's hits to c (used by circular stitching),
// returning a new Cluster. other and c must share a model.
func Merge(id int, weights config.HitWeight, other, c *Cluster) (*Cluster, error) {
	if other.Model != c.Model {
		return nil, macerr.New(macerr.ClusterModelMismatch, "cluster.Merge", c.Model.FQN, "cannot merge clusters from different models")
	}
	merged := make([]hit.ModelHit, 0, len(other.Hits)+len(c.Hits))
	merged = append(merged, other.Hits...)
	merged = append(merged, c.Hits...)
	return New(id, weights, merged)
}

// Functions returns the set of functional names covered by c's hits
// (cached).
func (c *Cluster) Functions() map[string]bool {
	if c.functionsCache != nil {
		return c.functionsCache
	}
	fns := make(map[string]bool, len(c.Hits))
	for _, h := range c.Hits {
		fns[h.FunctionName()] = true
	}
	c.functionsCache = fns
	return fns
}

// isOutOfClusterSingleton reports whether c is a single loner or
// single multi-system hit standing alone.
func (c *Cluster) isOutOfClusterSingleton() bool {
	return len(c.Hits) == 1 && (c.Hits[0].IsLoner() || c.Hits[0].IsMultiSystem())
}

// Score computes the cluster's weighted score: for
// each hit, its BaseWeight (scaled by the out-of-cluster multiplier if c
// is a single loner/multi-system cluster), grouped by function and summed
// using only each function's maximum contribution.
func (c *Cluster) Score() (float64, error) {
	if c.scoreCache != nil {
		return *c.scoreCache, nil
	}
	singleton := c.isOutOfClusterSingleton()
	best := make(map[string]float64)
	for _, h := range c.Hits {
		w, err := h.BaseWeight(c.Weights)
		if err != nil {
			return 0, err
		}
		if singleton {
			w *= c.Weights.OutOfCluster
		}
		fn := h.FunctionName()
		if cur, ok := best[fn]; !ok || w > cur {
			best[fn] = w
		}
	}
	total := 0.0
	for _, w := range best {
		total += w
	}
	c.scoreCache = &total
	return total, nil
}

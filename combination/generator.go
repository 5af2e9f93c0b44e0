// Package combination enumerates candidate cluster/loner combinations a
// model's systems can be built from.
package combination

import (
	"sort"

	"github.com/gem-pasteur/macsylib/cluster"
)

// Combination is one candidate set of clusters (regular clusters and/or
// loner/multi-system singleton clusters) a System may be validated from.
type Combination []*cluster.Cluster

type namedLoner struct {
	fn string
	c  *cluster.Cluster
}

// nonEmptySubsets enumerates every non-empty subset of items, in
// bitmask order (deterministic given a stable input order).
func nonEmptySubsets(items []*cluster.Cluster) []Combination {
	n := len(items)
	if n == 0 {
		return nil
	}
	out := make([]Combination, 0, (1<<n)-1)
	for mask := 1; mask < (1 << n); mask++ {
		var s Combination
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				s = append(s, items[i])
			}
		}
		out = append(out, s)
	}
	return out
}

func clone(c Combination) Combination {
	out := make(Combination, len(c))
	copy(out, c)
	return out
}

// Generate builds candidate combinations: cluster subsets (all non-empty
// subsets if multiLoci, else singletons) crossed with loner subsets,
// vetoing any cross where a cluster in the subset already fulfills a
// loner function, plus the loner subsets standing alone, plus the bare
// cluster subsets. multiLoci is the effective per-model flag: the
// model's own `multi_loci` attribute OR'd with the run-wide config
// fallback, so a run-wide --multi-loci can only turn the behavior on,
// never silently override a model that explicitly wants single-locus
// systems off.
func Generate(multiLoci bool, trueClusters []*cluster.Cluster, trueLoners map[string]*cluster.Cluster) []Combination {
	var clusterSubsets []Combination
	if multiLoci {
		clusterSubsets = nonEmptySubsets(trueClusters)
	} else {
		for _, c := range trueClusters {
			clusterSubsets = append(clusterSubsets, Combination{c})
		}
	}

	loners := make([]namedLoner, 0, len(trueLoners))
	for fn, c := range trueLoners {
		loners = append(loners, namedLoner{fn: fn, c: c})
	}
	sort.Slice(loners, func(i, j int) bool { return loners[i].fn < loners[j].fn })

	var out []Combination
	// Bare cluster subsets stand on their own.
	for _, cs := range clusterSubsets {
		out = append(out, clone(cs))
	}

	n := len(loners)
	for mask := 1; mask < (1 << n); mask++ {
		var lonerSubset Combination
		lonerFuncs := make(map[string]bool)
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				lonerSubset = append(lonerSubset, loners[i].c)
				lonerFuncs[loners[i].fn] = true
			}
		}
		// The loner subset alone covers pure-loner definitions (or
		// min_genes_required == 1 plus one loner).
		out = append(out, clone(lonerSubset))

		for _, cs := range clusterSubsets {
			if clusterSubsetFulfillsAny(cs, lonerFuncs) {
				continue
			}
			combo := clone(cs)
			combo = append(combo, lonerSubset...)
			out = append(out, combo)
		}
	}
	return out
}

func clusterSubsetFulfillsAny(cs Combination, functions map[string]bool) bool {
	for _, c := range cs {
		fns := c.Functions()
		for fn := range functions {
			if fns[fn] {
				return true
			}
		}
	}
	return false
}

// GenerateMultiSystemRecombination performs the multi-system
// re-combination pass: for every rejected candidate and every
// non-empty subset of multiSystemClusters, append the subset to the
// rejected candidate's hits iff the candidate does not already fulfill
// any of the subset's functions.
func GenerateMultiSystemRecombination(rejected []Combination, multiSystemClusters []*cluster.Cluster) []Combination {
	subsets := nonEmptySubsets(multiSystemClusters)
	var out []Combination
	for _, cand := range rejected {
		candFuncs := make(map[string]bool)
		for _, c := range cand {
			for fn := range c.Functions() {
				candFuncs[fn] = true
			}
		}
		for _, subset := range subsets {
			if clusterSubsetFulfillsAny(subset, candFuncs) {
				continue
			}
			combo := clone(cand)
			combo = append(combo, subset...)
			out = append(out, combo)
		}
	}
	return out
}

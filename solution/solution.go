// Package solution selects the best non-conflicting cover of systems from
// every validated system a run produced.
package solution

import (
	"sort"

	"github.com/biogo/store/llrb"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gem-pasteur/macsylib/system"
)

// Solution is one maximal set of pairwise-compatible systems: a clique of
// the compatibility graph materialized once it survives the
// running-maximum score filter.
type Solution struct {
	Systems []*system.System

	Score            float64
	HitsNumber       int
	SystemCount      int
	AverageWholeness float64
	HitsPositions    []int
}

// systemByRank orders a Solution's member systems by (hit_positions,
// model.fqn, -score), the materialization order the final ranking step
// names.
type systemByRank []*system.System

func (s systemByRank) Len() int      { return len(s) }
func (s systemByRank) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s systemByRank) Less(i, j int) bool {
	if c := comparePositions(s[i].HitPositions, s[j].HitPositions); c != 0 {
		return c < 0
	}
	if s[i].Model.FQN != s[j].Model.FQN {
		return s[i].Model.FQN < s[j].Model.FQN
	}
	return s[i].Score > s[j].Score
}

func buildSolution(systems []*system.System) *Solution {
	sorted := make(systemByRank, len(systems))
	copy(sorted, systems)
	sort.Sort(sorted)

	s := &Solution{Systems: []*system.System(sorted), SystemCount: len(systems)}
	seen := make(map[string]bool)
	var wholenessSum float64
	for _, sys := range sorted {
		s.Score += sys.Score
		wholenessSum += sys.Wholeness
		s.HitsPositions = append(s.HitsPositions, sys.HitPositions...)
		for id := range sys.HitIDs() {
			if !seen[id] {
				seen[id] = true
				s.HitsNumber++
			}
		}
	}
	if len(systems) > 0 {
		s.AverageWholeness = wholenessSum / float64(len(systems))
	}
	sort.Ints(s.HitsPositions)
	return s
}

// rankedSolution orders Solutions for llrb.Tree under the final ranking
// step's sort: descending (hits_number, system_count, average_wholeness,
// hits_positions), with discovery order (seq) breaking full ties so that
// Compare never returns 0 and llrb.Tree.Insert never replaces an entry.
// Compare returns -1 when s ranks ahead of other, the way
// mergeLeaf.Compare orders shards by sort key (grailbio-bio's shard
// merger) rather than via sort.Slice.
type rankedSolution struct {
	*Solution
	seq int
}

func (s rankedSolution) Compare(other llrb.Comparable) int {
	o := other.(rankedSolution)
	if s.HitsNumber != o.HitsNumber {
		if s.HitsNumber > o.HitsNumber {
			return -1
		}
		return 1
	}
	if s.SystemCount != o.SystemCount {
		if s.SystemCount > o.SystemCount {
			return -1
		}
		return 1
	}
	if s.AverageWholeness != o.AverageWholeness {
		if s.AverageWholeness > o.AverageWholeness {
			return -1
		}
		return 1
	}
	if c := comparePositions(s.HitsPositions, o.HitsPositions); c != 0 {
		return -c
	}
	switch {
	case s.seq < o.seq:
		return -1
	case s.seq > o.seq:
		return 1
	}
	return 0
}

// systemNode adapts a system index to a gonum graph.Node ("arena +
// integer index").
type systemNode struct {
	id int64
}

func (n systemNode) ID() int64 { return n.id }

// compatibilityGraph builds the undirected graph whose nodes are systems
// and whose edges join every pair of compatible systems: "Two
// systems are compatible iff they share no CoreHit."
func compatibilityGraph(systems []*system.System) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	nodes := make([]systemNode, len(systems))
	for i := range systems {
		nodes[i] = systemNode{id: int64(i)}
		g.AddNode(nodes[i])
	}
	for i := 0; i < len(systems); i++ {
		for j := i + 1; j < len(systems); j++ {
			if systems[i].Compatible(systems[j]) {
				g.SetEdge(simple.Edge{F: nodes[i], T: nodes[j]})
			}
		}
	}
	return g
}

// adjacency flattens g into one neighbor set per node, built once so the
// clique search below never re-walks the gonum graph.
func adjacency(g *simple.UndirectedGraph, n int) []map[int64]bool {
	adj := make([]map[int64]bool, n)
	for i := 0; i < n; i++ {
		set := make(map[int64]bool)
		it := g.From(int64(i))
		for it.Next() {
			set[it.Node().ID()] = true
		}
		adj[i] = set
	}
	return adj
}

func intersect(set, neighbors map[int64]bool) map[int64]bool {
	out := make(map[int64]bool, len(set))
	for v := range set {
		if neighbors[v] {
			out[v] = true
		}
	}
	return out
}

// choosePivot picks the vertex of P∪X with the most neighbors in P, the
// standard Bron-Kerbosch-with-pivot rule that prunes the branching factor
// by skipping pivot's own neighbors as candidates.
func choosePivot(P, X map[int64]bool, adj []map[int64]bool) int64 {
	best, bestDegree := int64(-1), -1
	consider := func(u int64) {
		degree := 0
		for v := range P {
			if adj[u][v] {
				degree++
			}
		}
		if degree > bestDegree {
			best, bestDegree = u, degree
		}
	}
	for u := range P {
		consider(u)
	}
	for u := range X {
		consider(u)
	}
	return best
}

// bronKerbosch enumerates maximal cliques of adj via recursive
// Bron-Kerbosch with pivoting, calling report once per clique instead of
// materializing the full batch: at the scale this graph reaches (tens of
// thousands of systems), holding every clique in memory at once is not
// feasible, and most cliques never beat the running-maximum score anyway.
func bronKerbosch(adj []map[int64]bool, R []int64, P, X map[int64]bool, report func(clique []int64)) {
	if len(P) == 0 && len(X) == 0 {
		report(R)
		return
	}
	pivot := choosePivot(P, X, adj)
	candidates := make([]int64, 0, len(P))
	for v := range P {
		if pivot < 0 || !adj[pivot][v] {
			candidates = append(candidates, v)
		}
	}
	for _, v := range candidates {
		nextR := make([]int64, len(R)+1)
		copy(nextR, R)
		nextR[len(R)] = v
		bronKerbosch(adj, nextR, intersect(P, adj[v]), intersect(X, adj[v]), report)
		delete(P, v)
		X[v] = true
	}
}

// Select streams the compatibility graph's maximal cliques (Bron-Kerbosch
// with pivoting), scoring each in place as a sum over its member systems
// and only calling buildSolution -- which sorts, dedupes hit IDs, and
// allocates a Solution -- for cliques that reach or tie the running
// maximum. Survivors are returned sorted descending by (hits_number,
// system_count, average_wholeness, hits_positions).
func Select(systems []*system.System) []*Solution {
	if len(systems) == 0 {
		return nil
	}
	g := compatibilityGraph(systems)
	adj := adjacency(g, len(systems))

	maxScore := 0.0
	haveSurvivor := false
	var survivors []*Solution

	report := func(clique []int64) {
		var score float64
		for _, id := range clique {
			score += systems[id].Score
		}
		switch {
		case !haveSurvivor || score > maxScore:
			maxScore = score
			haveSurvivor = true
			survivors = []*Solution{buildSolution(cliqueSystems(systems, clique))}
		case score == maxScore:
			survivors = append(survivors, buildSolution(cliqueSystems(systems, clique)))
		}
	}

	P := make(map[int64]bool, len(systems))
	for i := range systems {
		P[int64(i)] = true
	}
	bronKerbosch(adj, nil, P, make(map[int64]bool), report)
	if !haveSurvivor {
		return nil
	}

	ranked := llrb.Tree{}
	for i, sol := range survivors {
		ranked.Insert(rankedSolution{Solution: sol, seq: i})
	}
	out := make([]*Solution, 0, len(survivors))
	ranked.Do(func(item llrb.Comparable) bool {
		out = append(out, item.(rankedSolution).Solution)
		return true
	})
	return out
}

func cliqueSystems(systems []*system.System, clique []int64) []*system.System {
	members := make([]*system.System, len(clique))
	for i, id := range clique {
		members[i] = systems[id]
	}
	return members
}

func comparePositions(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

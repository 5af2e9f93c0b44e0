package cluster

import (
	"github.com/gem-pasteur/macsylib/hit"
	"github.com/gem-pasteur/macsylib/modeldef"
	"github.com/gem-pasteur/macsylib/replicon"
)

// colocates implements the colocation predicate: h1 and h2, on the same
// replicon, colocalize iff their gap is within the per-pair
// inter_gene_max_space, or -- on a circular replicon -- iff the wrap-around
// gap is.
func colocates(h1, h2 hit.ModelHit, rep replicon.Info) bool {
	g1 := h1.Model.Gene(h1.GeneRef)
	g2 := h2.Model.Gene(h2.GeneRef)
	limit := modeldef.GeneInterGeneMaxSpace(g1, g2, h1.Model.InterGeneMaxSpace)

	dist := h2.Core.Position - h1.Core.Position - 1
	if dist >= 0 && dist <= limit {
		return true
	}
	if rep.Topology == replicon.Circular && dist <= 0 {
		wrapped := (rep.MaxPos - h1.Core.Position) + (h2.Core.Position - rep.MinPos)
		return wrapped <= limit
	}
	return false
}

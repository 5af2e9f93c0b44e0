package modeldef

// GeneStatus is the role a gene plays within one model.
type GeneStatus int

const (
	// Mandatory genes must all (up to min_mandatory_genes_required) be present.
	Mandatory GeneStatus = iota
	// Accessory genes contribute to min_genes_required but are not required
	// individually.
	Accessory
	// Neutral genes never count toward quorum; they exist purely to be
	// clustered away from real hits.
	Neutral
	// Forbidden genes, if present in a candidate, veto the system outright.
	Forbidden
)

func (s GeneStatus) String() string {
	switch s {
	case Mandatory:
		return "mandatory"
	case Accessory:
		return "accessory"
	case Neutral:
		return "neutral"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// CoreGene is an identifier shared across models; it names the HMM profile
// that distinguishes it and nothing else. CoreGenes live in a GeneBank
// ("Gene bank"), never in per-model state.
type CoreGene struct {
	Name        string
	FamilyName  string
	ProfilePath string
}

// CoreGeneRef indexes a CoreGene inside a GeneBank. It is the Go analogue of
// the source's pointer-based gene_ref, re-architected as an arena index
// ("Model-gene references") so equality and copying stay cheap and
// acyclic.
type CoreGeneRef int

// ModelGene binds a CoreGene to one Model with its per-model attributes
// (status, loner/multi-system/multi-model flags, inter-gene spacing).
// ModelGenes are owned by the Model that declares them and are
// referenced by index (GeneRef), never by pointer.
type ModelGene struct {
	CoreGeneRef       CoreGeneRef
	Name              string // convenience copy of the bound CoreGene's name
	Status            GeneStatus
	Loner             bool
	MultiSystem       bool
	MultiModel        bool
	InterGeneMaxSpace *int // per-gene override of the model default

	// exchangeables holds the GeneRefs of alternate ModelGenes that may stand
	// in for this one. Only set on a primary gene.
	exchangeables []GeneRef
	// alternateOf is the GeneRef of the primary gene this one substitutes
	// for, or itself if this gene is not an exchangeable.
	alternateOf GeneRef
}

// GeneRef indexes a ModelGene inside its owning Model's gene arena.
type GeneRef int

// Exchangeables returns the GeneRefs this gene may be substituted by.
func (g *ModelGene) Exchangeables() []GeneRef { return g.exchangeables }

// isExchangeable reports whether this gene is itself standing in for
// another (i.e. alternateOf != its own ref).
func (g *ModelGene) isExchangeable(self GeneRef) bool { return g.alternateOf != self }

package modeldef

import (
	"strings"

	"github.com/gem-pasteur/macsylib/internal/macerr"
)

// Model describes which genes compose a system, their roles, and the
// spatial-clustering constraints governing them.
type Model struct {
	FQN     string
	Vers    string
	Comment string

	InterGeneMaxSpace        int
	MinMandatoryGenesRequired int
	MinGenesRequired          int
	MaxNbGenes                int
	MultiLoci                 bool

	genes []ModelGene

	mandatory []GeneRef
	accessory []GeneRef
	neutral   []GeneRef
	forbidden []GeneRef

	byName map[string]GeneRef
}

// NewModel builds an empty Model ready to receive AddGene calls.
func NewModel(fqn string, interGeneMaxSpace int) *Model {
	return &Model{
		FQN:               fqn,
		InterGeneMaxSpace: interGeneMaxSpace,
		byName:            make(map[string]GeneRef),
	}
}

// FamilyName returns the first path segment of the model's fqn, e.g.
// "family" for "family/subfamily/T2SS".
func (m *Model) FamilyName() string {
	if i := strings.IndexByte(m.FQN, '/'); i >= 0 {
		return m.FQN[:i]
	}
	return m.FQN
}

// AddGene appends a primary gene (not an exchangeable of anything else) and
// returns its GeneRef. It enforces the invariant that a gene name appears
// at most once among the four status lists.
func (m *Model) AddGene(core CoreGeneRef, name string, status GeneStatus, loner, multiSystem, multiModel bool, interGeneMaxSpace *int) (GeneRef, error) {
	if _, dup := m.byName[name]; dup {
		return 0, macerr.New(macerr.ModelInconsistency, "AddGene", m.FQN, "gene "+name+" already present in model")
	}
	ref := GeneRef(len(m.genes))
	g := ModelGene{
		CoreGeneRef:       core,
		Name:              name,
		Status:            status,
		Loner:             loner,
		MultiSystem:       multiSystem,
		MultiModel:        multiModel,
		InterGeneMaxSpace: interGeneMaxSpace,
		alternateOf:       ref,
	}
	m.genes = append(m.genes, g)
	m.byName[name] = ref
	switch status {
	case Mandatory:
		m.mandatory = append(m.mandatory, ref)
	case Accessory:
		m.accessory = append(m.accessory, ref)
	case Neutral:
		m.neutral = append(m.neutral, ref)
	case Forbidden:
		m.forbidden = append(m.forbidden, ref)
	default:
		return 0, macerr.New(macerr.ModelInconsistency, "AddGene", m.FQN, "unknown gene status for "+name)
	}
	return ref, nil
}

// AddExchangeable registers name as an alternate identity for the gene
// primary refers to, sharing primary's status/loner/multi-system
// attributes ("exchangeables").
func (m *Model) AddExchangeable(primary GeneRef, core CoreGeneRef, name string) (GeneRef, error) {
	if int(primary) >= len(m.genes) {
		return 0, macerr.New(macerr.ModelInconsistency, "AddExchangeable", m.FQN, "unknown primary gene ref")
	}
	if _, dup := m.byName[name]; dup {
		return 0, macerr.New(macerr.ModelInconsistency, "AddExchangeable", m.FQN, "gene "+name+" already present in model")
	}
	p := &m.genes[primary]
	ref := GeneRef(len(m.genes))
	g := ModelGene{
		CoreGeneRef: core,
		Name:        name,
		Status:      p.Status,
		Loner:       p.Loner,
		MultiSystem: p.MultiSystem,
		MultiModel:  p.MultiModel,
		alternateOf: primary,
	}
	m.genes = append(m.genes, g)
	m.byName[name] = ref
	p.exchangeables = append(p.exchangeables, ref)
	return ref, nil
}

// Gene returns the ModelGene at ref.
func (m *Model) Gene(ref GeneRef) *ModelGene { return &m.genes[ref] }

// GeneByName resolves a gene name declared in this model to its GeneRef.
func (m *Model) GeneByName(name string) (GeneRef, bool) {
	ref, ok := m.byName[name]
	return ref, ok
}

// AlternateOf resolves ref to the primary gene it is interchangeable with
// (itself, if ref already names a primary gene).
func (m *Model) AlternateOf(ref GeneRef) GeneRef { return m.genes[ref].alternateOf }

// FunctionName returns the canonical functional name of ref: the name of
// the primary gene it resolves to via AlternateOf.
func (m *Model) FunctionName(ref GeneRef) string {
	return m.genes[m.AlternateOf(ref)].Name
}

// IsExchangeable reports whether ref names an alternate identity rather
// than a primary gene.
func (m *Model) IsExchangeable(ref GeneRef) bool { return m.genes[ref].isExchangeable(ref) }

// Mandatory, Accessory, Neutral, Forbidden return the GeneRefs declared
// under each status.
func (m *Model) Mandatory() []GeneRef { return m.mandatory }
func (m *Model) Accessory() []GeneRef { return m.accessory }
func (m *Model) Neutral() []GeneRef   { return m.neutral }
func (m *Model) Forbidden() []GeneRef { return m.forbidden }

// Validate checks the cross-field invariants required of a
// fully-populated model.
func (m *Model) Validate() error {
	if m.MinGenesRequired > 0 && m.MinMandatoryGenesRequired > 0 && m.MinGenesRequired < m.MinMandatoryGenesRequired {
		return macerr.New(macerr.ModelInconsistency, "Validate", m.FQN, "min_genes_required must be >= min_mandatory_genes_required")
	}
	if len(m.mandatory) == 0 && m.MinMandatoryGenesRequired > 0 {
		return macerr.New(macerr.ModelInconsistency, "Validate", m.FQN, "min_mandatory_genes_required > 0 but no mandatory genes declared")
	}
	return nil
}

// MandatoryQuorum returns min_mandatory_genes_required, defaulting (when
// unset, i.e. zero) to the number of declared mandatory genes.
func (m *Model) MandatoryQuorum() int {
	if m.MinMandatoryGenesRequired == 0 {
		return len(m.mandatory)
	}
	return m.MinMandatoryGenesRequired
}

// GenesQuorum returns min_genes_required, defaulting to the number of
// declared mandatory genes.
func (m *Model) GenesQuorum() int {
	if m.MinGenesRequired == 0 {
		return len(m.mandatory)
	}
	return m.MinGenesRequired
}

// MaxGenes returns max_nb_genes, defaulting to mandatory+accessory gene
// count.
func (m *Model) MaxGenes() int {
	if m.MaxNbGenes == 0 {
		return len(m.mandatory) + len(m.accessory)
	}
	return m.MaxNbGenes
}

// GeneInterGeneMaxSpace resolves the per-pair inter_gene_max_space rule
// for two hits' genes within this model.
func GeneInterGeneMaxSpace(g1, g2 *ModelGene, modelDefault int) int {
	d1, d2 := g1.InterGeneMaxSpace, g2.InterGeneMaxSpace
	switch {
	case d1 == nil && d2 == nil:
		return modelDefault
	case d1 != nil && d2 == nil:
		return *d1
	case d1 == nil && d2 != nil:
		return *d2
	default:
		if *d1 < *d2 {
			return *d1
		}
		return *d2
	}
}

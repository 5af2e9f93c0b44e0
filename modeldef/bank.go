package modeldef

import (
	"sync"

	"github.com/gem-pasteur/macsylib/internal/macerr"
)

// GeneBank is a write-once-during-setup, read-only-during-detection store of
// CoreGenes, keyed by (family, name). It is an explicit context object
// threaded by the caller, not a package-level singleton.
//
// Modeled on fusion.GeneDB's dense-ID arena: adding the same gene twice is
// a no-op, and lookups never allocate once the bank is built.
type GeneBank struct {
	mu      sync.Mutex
	arena   []CoreGene
	byKey   map[string]CoreGeneRef
}

// NewGeneBank returns an empty bank.
func NewGeneBank() *GeneBank {
	return &GeneBank{byKey: make(map[string]CoreGeneRef)}
}

func geneKey(family, name string) string { return family + "\x00" + name }

// Add registers a CoreGene, returning its existing ref if one with the same
// (family, name) was already added (idempotent).
func (b *GeneBank) Add(family, name, profilePath string) CoreGeneRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := geneKey(family, name)
	if ref, ok := b.byKey[key]; ok {
		return ref
	}
	ref := CoreGeneRef(len(b.arena))
	b.arena = append(b.arena, CoreGene{Name: name, FamilyName: family, ProfilePath: profilePath})
	b.byKey[key] = ref
	return ref
}

// Get resolves a ref to its CoreGene. Callers never hold a CoreGene across
// a bank mutation; the bank is write-once so this is safe without locking
// once setup has finished.
func (b *GeneBank) Get(ref CoreGeneRef) CoreGene { return b.arena[ref] }

// Lookup resolves a (family, name) pair to its ref, if present.
func (b *GeneBank) Lookup(family, name string) (CoreGeneRef, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ref, ok := b.byKey[geneKey(family, name)]
	return ref, ok
}

// ModelBank is the same write-once/read-only discipline applied to Models,
// keyed by fqn.
type ModelBank struct {
	mu     sync.Mutex
	byFQN  map[string]*Model
	order  []string
}

// NewModelBank returns an empty bank.
func NewModelBank() *ModelBank {
	return &ModelBank{byFQN: make(map[string]*Model)}
}

// Add registers m, returning an error if a different model with the same
// fqn was already added (unlike GeneBank, re-adding an identical *Model
// pointer is a no-op; models are mutable while loading, so silently keeping
// the first registration -- as GeneBank does for genes -- would hide a
// loader bug).
func (b *ModelBank) Add(m *Model) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.byFQN[m.FQN]; ok {
		if existing == m {
			return nil
		}
		return macerr.New(macerr.ModelInconsistency, "ModelBank.Add", m.FQN, "a different model is already registered under this fqn")
	}
	b.byFQN[m.FQN] = m
	b.order = append(b.order, m.FQN)
	return nil
}

// Get resolves fqn to its Model.
func (b *ModelBank) Get(fqn string) (*Model, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.byFQN[fqn]
	return m, ok
}

// All returns every registered model, in registration order.
func (b *ModelBank) All() []*Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Model, 0, len(b.order))
	for _, fqn := range b.order {
		out = append(out, b.byFQN[fqn])
	}
	return out
}

// Context bundles the two banks detection code needs. Passing a *Context
// explicitly, instead of reaching for a process-wide singleton, keeps
// concurrent loads and lookups isolated per run.
type Context struct {
	Genes  *GeneBank
	Models *ModelBank
}

// NewContext returns a Context with fresh, empty banks.
func NewContext() *Context {
	return &Context{Genes: NewGeneBank(), Models: NewModelBank()}
}

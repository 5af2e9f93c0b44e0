package modeldef

import (
	"strings"
	"testing"
)

func buildT2SSModel(t *testing.T) (*Model, *GeneBank) {
	t.Helper()
	genes := NewGeneBank()
	m := NewModel("foo/T2SS", 11)
	m.MinMandatoryGenesRequired = 2
	m.MinGenesRequired = 3
	m.MaxNbGenes = 5

	add := func(name string, status GeneStatus, loner bool) GeneRef {
		core := genes.Add("foo", name, "profiles/"+name+".hmm")
		ref, err := m.AddGene(core, name, status, loner, false, false, nil)
		if err != nil {
			t.Fatalf("AddGene(%s): %v", name, err)
		}
		return ref
	}
	add("gspD", Mandatory, false)
	add("sctC", Mandatory, false)
	add("sctJ", Accessory, false)
	sctN := add("sctN", Accessory, false)
	add("abc", Neutral, true)

	core := genes.Add("foo", "sctN_FLG", "profiles/sctN_FLG.hmm")
	if _, err := m.AddExchangeable(sctN, core, "sctN_FLG"); err != nil {
		t.Fatalf("AddExchangeable: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return m, genes
}

func TestFamilyName(t *testing.T) {
	m, _ := buildT2SSModel(t)
	if got := m.FamilyName(); got != "foo" {
		t.Fatalf("FamilyName() = %q, want foo", got)
	}
}

func TestAlternateOfAndFunctionName(t *testing.T) {
	m, _ := buildT2SSModel(t)
	sctN, ok := m.GeneByName("sctN")
	if !ok {
		t.Fatal("sctN not found")
	}
	flg, ok := m.GeneByName("sctN_FLG")
	if !ok {
		t.Fatal("sctN_FLG not found")
	}
	if m.AlternateOf(flg) != sctN {
		t.Fatalf("AlternateOf(sctN_FLG) should resolve to sctN")
	}
	if m.AlternateOf(sctN) != sctN {
		t.Fatalf("AlternateOf(sctN) should resolve to itself")
	}
	if got := m.FunctionName(flg); got != "sctN" {
		t.Fatalf("FunctionName(sctN_FLG) = %q, want sctN", got)
	}
	if !m.IsExchangeable(flg) {
		t.Fatalf("sctN_FLG should be an exchangeable")
	}
	if m.IsExchangeable(sctN) {
		t.Fatalf("sctN should not be an exchangeable")
	}
}

func TestDuplicateGeneNameRejected(t *testing.T) {
	genes := NewGeneBank()
	m := NewModel("foo/T2SS", 11)
	core := genes.Add("foo", "gspD", "profiles/gspD.hmm")
	if _, err := m.AddGene(core, "gspD", Mandatory, false, false, false, nil); err != nil {
		t.Fatalf("first AddGene: %v", err)
	}
	if _, err := m.AddGene(core, "gspD", Accessory, false, false, false, nil); err == nil {
		t.Fatalf("expected error adding duplicate gene name")
	}
}

func TestMinGenesRequiredBelowMandatoryRejected(t *testing.T) {
	genes := NewGeneBank()
	m := NewModel("foo/T2SS", 11)
	core := genes.Add("foo", "gspD", "profiles/gspD.hmm")
	if _, err := m.AddGene(core, "gspD", Mandatory, false, false, false, nil); err != nil {
		t.Fatalf("AddGene: %v", err)
	}
	m.MinMandatoryGenesRequired = 2
	m.MinGenesRequired = 1
	if err := m.Validate(); err == nil {
		t.Fatalf("expected ModelInconsistency for min_genes_required < min_mandatory_genes_required")
	} else if !strings.Contains(err.Error(), "min_genes_required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGeneInterGeneMaxSpace(t *testing.T) {
	d5, d8 := 5, 8
	g1 := &ModelGene{}
	g2 := &ModelGene{}
	if got := GeneInterGeneMaxSpace(g1, g2, 11); got != 11 {
		t.Fatalf("both unset: got %d, want 11", got)
	}
	g1.InterGeneMaxSpace = &d5
	if got := GeneInterGeneMaxSpace(g1, g2, 11); got != 5 {
		t.Fatalf("one set: got %d, want 5", got)
	}
	g2.InterGeneMaxSpace = &d8
	if got := GeneInterGeneMaxSpace(g1, g2, 11); got != 5 {
		t.Fatalf("both set: got %d, want min(5,8)=5", got)
	}
}

func TestGeneBankIdempotent(t *testing.T) {
	b := NewGeneBank()
	r1 := b.Add("foo", "gspD", "profiles/gspD.hmm")
	r2 := b.Add("foo", "gspD", "profiles/gspD.hmm")
	if r1 != r2 {
		t.Fatalf("adding the same gene twice should be a no-op: %v != %v", r1, r2)
	}
	if len(b.arena) != 1 {
		t.Fatalf("expected 1 entry in arena, got %d", len(b.arena))
	}
}

package system

import (
	"testing"

	"github.com/gem-pasteur/macsylib/cluster"
	"github.com/gem-pasteur/macsylib/combination"
	"github.com/gem-pasteur/macsylib/hit"
	"github.com/gem-pasteur/macsylib/internal/config"
	"github.com/gem-pasteur/macsylib/modeldef"
)

func buildModel(t *testing.T) (*modeldef.Model, modeldef.GeneRef, modeldef.GeneRef, modeldef.GeneRef, modeldef.GeneRef) {
	t.Helper()
	genes := modeldef.NewGeneBank()
	m := modeldef.NewModel("foo/T2SS", 11)
	m.MinMandatoryGenesRequired = 2
	m.MinGenesRequired = 3
	m.MaxNbGenes = 4

	add := func(name string, status modeldef.GeneStatus) modeldef.GeneRef {
		core := genes.Add("foo", name, "profiles/"+name+".hmm")
		ref, err := m.AddGene(core, name, status, false, false, false, nil)
		if err != nil {
			t.Fatalf("AddGene(%s): %v", name, err)
		}
		return ref
	}
	gspD := add("gspD", modeldef.Mandatory)
	sctC := add("sctC", modeldef.Mandatory)
	sctJ := add("sctJ", modeldef.Accessory)
	forbidden := add("bad", modeldef.Forbidden)
	return m, gspD, sctC, sctJ, forbidden
}

func singleCluster(t *testing.T, m *modeldef.Model, hits ...hit.ModelHit) *cluster.Cluster {
	t.Helper()
	c, err := cluster.New(1, config.DefaultHitWeight, hits)
	if err != nil {
		t.Fatalf("cluster.New: %v", err)
	}
	return c
}

func TestValidate_Accepts(t *testing.T) {
	m, gspD, sctC, sctJ, _ := buildModel(t)
	c := singleCluster(t, m,
		hit.New(hit.CoreHit{HitID: "h1", RepliconName: "rep1", Position: 10, Score: 50}, m, gspD),
		hit.New(hit.CoreHit{HitID: "h2", RepliconName: "rep1", Position: 20, Score: 50}, m, sctC),
		hit.New(hit.CoreHit{HitID: "h3", RepliconName: "rep1", Position: 30, Score: 50}, m, sctJ),
	)
	sys, rejected, err := Validate(0, m, combination.Combination{c})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if rejected != nil {
		t.Fatalf("expected acceptance, got rejection: %s", rejected.Reason)
	}
	// 3 covered functions (gspD, sctC, sctJ) out of max_nb_genes = 4.
	if sys.Wholeness != 0.75 {
		t.Fatalf("expected wholeness 3/4, got %v", sys.Wholeness)
	}
	if len(sys.HitIDs()) != 3 {
		t.Fatalf("expected 3 hit ids, got %d", len(sys.HitIDs()))
	}
}

func TestValidate_RejectsBelowMandatoryQuorum(t *testing.T) {
	m, gspD, _, sctJ, _ := buildModel(t)
	c := singleCluster(t, m,
		hit.New(hit.CoreHit{HitID: "h1", RepliconName: "rep1", Position: 10, Score: 50}, m, gspD),
		hit.New(hit.CoreHit{HitID: "h3", RepliconName: "rep1", Position: 30, Score: 50}, m, sctJ),
	)
	sys, rejected, err := Validate(0, m, combination.Combination{c})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if sys != nil {
		t.Fatalf("expected rejection, got a system")
	}
	if rejected == nil {
		t.Fatalf("expected a RejectedCandidate")
	}
}

func TestValidate_RejectsForbiddenHit(t *testing.T) {
	m, gspD, sctC, _, forbidden := buildModel(t)
	c := singleCluster(t, m,
		hit.New(hit.CoreHit{HitID: "h1", RepliconName: "rep1", Position: 10, Score: 50}, m, gspD),
		hit.New(hit.CoreHit{HitID: "h2", RepliconName: "rep1", Position: 20, Score: 50}, m, sctC),
		hit.New(hit.CoreHit{HitID: "h4", RepliconName: "rep1", Position: 40, Score: 50}, m, forbidden),
	)
	sys, rejected, err := Validate(0, m, combination.Combination{c})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if sys != nil {
		t.Fatalf("expected rejection for forbidden hit")
	}
	if rejected == nil || rejected.Reason != "contains a forbidden gene" {
		t.Fatalf("expected forbidden-gene rejection, got %+v", rejected)
	}
}

func TestCompatible(t *testing.T) {
	m, gspD, sctC, sctJ, _ := buildModel(t)
	c1 := singleCluster(t, m,
		hit.New(hit.CoreHit{HitID: "h1", RepliconName: "rep1", Position: 10, Score: 50}, m, gspD),
		hit.New(hit.CoreHit{HitID: "h2", RepliconName: "rep1", Position: 20, Score: 50}, m, sctC),
		hit.New(hit.CoreHit{HitID: "h3", RepliconName: "rep1", Position: 30, Score: 50}, m, sctJ),
	)
	sysA, _, err := Validate(0, m, combination.Combination{c1})
	if err != nil || sysA == nil {
		t.Fatalf("Validate sysA: %v", err)
	}

	c2 := singleCluster(t, m,
		hit.New(hit.CoreHit{HitID: "h4", RepliconName: "rep2", Position: 10, Score: 50}, m, gspD),
		hit.New(hit.CoreHit{HitID: "h5", RepliconName: "rep2", Position: 20, Score: 50}, m, sctC),
		hit.New(hit.CoreHit{HitID: "h6", RepliconName: "rep2", Position: 30, Score: 50}, m, sctJ),
	)
	sysB, _, err := Validate(1, m, combination.Combination{c2})
	if err != nil || sysB == nil {
		t.Fatalf("Validate sysB: %v", err)
	}
	if !sysA.Compatible(sysB) {
		t.Fatalf("expected disjoint-replicon systems to be compatible")
	}

	c3 := singleCluster(t, m,
		hit.New(hit.CoreHit{HitID: "h1", RepliconName: "rep1", Position: 10, Score: 50}, m, gspD),
		hit.New(hit.CoreHit{HitID: "h2", RepliconName: "rep1", Position: 20, Score: 50}, m, sctC),
		hit.New(hit.CoreHit{HitID: "h3", RepliconName: "rep1", Position: 30, Score: 50}, m, sctJ),
	)
	sysC, _, err := Validate(2, m, combination.Combination{c3})
	if err != nil || sysC == nil {
		t.Fatalf("Validate sysC: %v", err)
	}
	if sysA.Compatible(sysC) {
		t.Fatalf("expected systems sharing a hit id to be incompatible")
	}
}

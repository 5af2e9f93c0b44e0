package combination

import (
	"testing"

	"github.com/gem-pasteur/macsylib/cluster"
	"github.com/gem-pasteur/macsylib/hit"
	"github.com/gem-pasteur/macsylib/internal/config"
	"github.com/gem-pasteur/macsylib/modeldef"
)

func newModel(t *testing.T, multiLoci bool) (*modeldef.Model, modeldef.GeneRef, modeldef.GeneRef, modeldef.GeneRef) {
	t.Helper()
	genes := modeldef.NewGeneBank()
	m := modeldef.NewModel("foo/T2SS", 11)
	m.MultiLoci = multiLoci
	core1 := genes.Add("foo", "gspD", "")
	core2 := genes.Add("foo", "sctC", "")
	core3 := genes.Add("foo", "abc", "")
	g1, err := m.AddGene(core1, "gspD", modeldef.Mandatory, false, false, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := m.AddGene(core2, "sctC", modeldef.Mandatory, false, false, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	g3, err := m.AddGene(core3, "abc", modeldef.Accessory, true, false, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m, g1, g2, g3
}

func singletonCluster(t *testing.T, m *modeldef.Model, ref modeldef.GeneRef, pos int) *cluster.Cluster {
	t.Helper()
	h := hit.New(hit.CoreHit{HitID: "h", RepliconName: "rep1", Position: pos, Score: 10}, m, ref)
	c, err := cluster.New(pos, config.DefaultHitWeight, []hit.ModelHit{h})
	if err != nil {
		t.Fatalf("cluster.New: %v", err)
	}
	return c
}

func TestGenerate_SinglociSingletonsOnly(t *testing.T) {
	m, g1, g2, _ := newModel(t, false)
	c1 := singletonCluster(t, m, g1, 10)
	c2 := singletonCluster(t, m, g2, 20)
	combos := Generate(m.MultiLoci, []*cluster.Cluster{c1, c2}, nil)
	// Bare subsets must each be a singleton: {c1}, {c2}.
	bareCount := 0
	for _, combo := range combos {
		if len(combo) == 1 {
			bareCount++
		}
		if len(combo) > 1 {
			t.Fatalf("single-locus model must never combine two regular clusters, got %d", len(combo))
		}
	}
	if bareCount != 2 {
		t.Fatalf("expected 2 bare singleton combinations, got %d", bareCount)
	}
}

func TestGenerate_MultiLociAllSubsets(t *testing.T) {
	m, g1, g2, _ := newModel(t, true)
	c1 := singletonCluster(t, m, g1, 10)
	c2 := singletonCluster(t, m, g2, 20)
	combos := Generate(m.MultiLoci, []*cluster.Cluster{c1, c2}, nil)
	// 3 non-empty subsets of {c1, c2}.
	if len(combos) != 3 {
		t.Fatalf("expected 3 bare combinations ({c1},{c2},{c1,c2}), got %d", len(combos))
	}
}

func TestGenerate_OverlapVeto(t *testing.T) {
	m, g1, _, g3 := newModel(t, false)
	// c1 already covers function "abc" via a regular hit of gene abc (loner
	// gene, but nothing stops it appearing inside a regular cluster too).
	hAbc := hit.New(hit.CoreHit{HitID: "h-abc", RepliconName: "rep1", Position: 11, Score: 5}, m, g3)
	hG1 := hit.New(hit.CoreHit{HitID: "h-g1", RepliconName: "rep1", Position: 10, Score: 5}, m, g1)
	c1, err := cluster.New(1, config.DefaultHitWeight, []hit.ModelHit{hG1, hAbc})
	if err != nil {
		t.Fatalf("cluster.New: %v", err)
	}
	lonerHit, err := hit.AsLoner(hit.New(hit.CoreHit{HitID: "loner-abc", RepliconName: "rep1", Position: 90, Score: 1}, m, g3), nil)
	if err != nil {
		t.Fatalf("AsLoner: %v", err)
	}
	lonerCluster, err := cluster.New(2, config.DefaultHitWeight, []hit.ModelHit{lonerHit})
	if err != nil {
		t.Fatalf("cluster.New: %v", err)
	}
	trueLoners := map[string]*cluster.Cluster{"abc": lonerCluster}

	combos := Generate(m.MultiLoci, []*cluster.Cluster{c1}, trueLoners)
	for _, combo := range combos {
		if len(combo) > 1 && containsCluster(combo, c1) && containsCluster(combo, lonerCluster) {
			t.Fatalf("combination must not cross c1 (already covers abc) with the abc loner")
		}
	}
	// The loner subset must still appear on its own.
	foundAlone := false
	for _, combo := range combos {
		if len(combo) == 1 && combo[0] == lonerCluster {
			foundAlone = true
		}
	}
	if !foundAlone {
		t.Fatalf("expected the loner subset to appear standing alone")
	}
}

func containsCluster(combo Combination, c *cluster.Cluster) bool {
	for _, x := range combo {
		if x == c {
			return true
		}
	}
	return false
}

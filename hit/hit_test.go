package hit

import (
	"testing"

	"github.com/gem-pasteur/macsylib/internal/config"
	"github.com/gem-pasteur/macsylib/modeldef"
)

func testModel(t *testing.T) (*modeldef.Model, modeldef.GeneRef, modeldef.GeneRef) {
	t.Helper()
	genes := modeldef.NewGeneBank()
	m := modeldef.NewModel("foo/T2SS", 11)
	core := genes.Add("foo", "sctN", "profiles/sctN.hmm")
	sctN, err := m.AddGene(core, "sctN", modeldef.Accessory, false, false, false, nil)
	if err != nil {
		t.Fatalf("AddGene: %v", err)
	}
	flgCore := genes.Add("foo", "sctN_FLG", "profiles/sctN_FLG.hmm")
	flg, err := m.AddExchangeable(sctN, flgCore, "sctN_FLG")
	if err != nil {
		t.Fatalf("AddExchangeable: %v", err)
	}
	return m, sctN, flg
}

func TestCoreHitOrdering(t *testing.T) {
	h1 := CoreHit{HitID: "a", Score: 10}
	h2 := CoreHit{HitID: "a", Score: 20}
	if !h1.Less(h2) {
		t.Fatalf("equal hit_id: should order by score")
	}
	h3 := CoreHit{HitID: "b", Score: 1}
	h4 := CoreHit{HitID: "c", Score: 100}
	if !h3.Less(h4) {
		t.Fatalf("different hit_id: should order lexicographically")
	}
}

func TestCoreHitEqualEpsilon(t *testing.T) {
	h1 := CoreHit{HitID: "a", Score: 10.0001}
	h2 := CoreHit{HitID: "a", Score: 10.0002}
	if !h1.Equal(h2) {
		t.Fatalf("scores within epsilon should be equal")
	}
	h3 := CoreHit{HitID: "a", Score: 10.1}
	if h1.Equal(h3) {
		t.Fatalf("scores beyond epsilon should not be equal")
	}
}

func TestBaseWeightExchangeable(t *testing.T) {
	m, sctN, flg := testModel(t)
	w := config.DefaultHitWeight

	hSctN := New(CoreHit{HitID: "h1"}, m, sctN)
	got, err := hSctN.BaseWeight(w)
	if err != nil {
		t.Fatalf("BaseWeight: %v", err)
	}
	if got != w.Accessory*w.Itself {
		t.Fatalf("BaseWeight(sctN) = %v, want %v", got, w.Accessory*w.Itself)
	}

	hFlg := New(CoreHit{HitID: "h2"}, m, flg)
	got, err = hFlg.BaseWeight(w)
	if err != nil {
		t.Fatalf("BaseWeight: %v", err)
	}
	if got != w.Accessory*w.Exchangeable {
		t.Fatalf("BaseWeight(sctN_FLG) = %v, want %v", got, w.Accessory*w.Exchangeable)
	}
}

func TestAsLonerRejectsNonLonerGene(t *testing.T) {
	m, sctN, _ := testModel(t)
	h := New(CoreHit{HitID: "h1"}, m, sctN)
	if _, err := AsLoner(h, nil); err == nil {
		t.Fatalf("expected InvalidLoner error for non-loner gene")
	}
}

func TestBestHitPrefersPrimaryThenCriterion(t *testing.T) {
	m, sctN, flg := testModel(t)
	hPrimaryLow := New(CoreHit{HitID: "p1", Score: 5}, m, sctN)
	hPrimaryHigh := New(CoreHit{HitID: "p2", Score: 50}, m, sctN)
	hAltHigher := New(CoreHit{HitID: "a1", Score: 90}, m, flg)

	best := BestHit([]ModelHit{hPrimaryLow, hPrimaryHigh, hAltHigher}, "sctN", config.CriterionScore)
	if best.Core.HitID != "p2" {
		t.Fatalf("BestHit should prefer primary gene hits over exchangeables even at lower score, got %s", best.Core.HitID)
	}
}

package profile

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func floatEqual(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func TestParseReport(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "gspD.out")
	report := `# hmmsearch
Query:       gspD  [M=100]

>> seq1_hit
   #    score  bias  c-Evalue  i-Evalue hmmfrom  hmm to    alifrom  ali to    envfrom  env to     acc
 ---   ------ ----- --------- --------- ------- -------    ------- -------    ------- -------    ----
   1 !   55.2   0.1   1.2e-15   3.4e-15       1      90 ..       5      95 ..       1     100    0.95

>> seq2_hit
   #    score  bias  c-Evalue  i-Evalue hmmfrom  hmm to    alifrom  ali to    envfrom  env to     acc
 ---   ------ ----- --------- --------- ------- -------    ------- -------    ------- -------    ----
   1 !   12.0   0.2   5.0e-02   1.0e-01      10      50 ..      20      60 ..      10      70    0.50
`
	if err := os.WriteFile(reportPath, []byte(report), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	seqLengths := map[string]int{"seq1_hit": 100, "seq2_hit": 80}
	hits, err := ParseReport(reportPath, 100, seqLengths)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	h1 := hits[0]
	if h1.HitID != "seq1_hit" {
		t.Fatalf("expected hit_id seq1_hit, got %s", h1.HitID)
	}
	if !floatEqual(h1.ProfileCoverage, 0.90) {
		t.Fatalf("expected profile coverage 0.90, got %v", h1.ProfileCoverage)
	}
	if !floatEqual(h1.SequenceCoverage, 0.91) {
		t.Fatalf("expected sequence coverage 0.91, got %v", h1.SequenceCoverage)
	}

	selected := SelectHits(hits, 0.001, 0.5)
	if len(selected) != 1 || selected[0].HitID != "seq1_hit" {
		t.Fatalf("expected only seq1_hit to pass selection, got %+v", selected)
	}
}

func TestParseReportMalformedHeader(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "bad.out")
	if err := os.WriteFile(reportPath, []byte(">>\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ParseReport(reportPath, 100, nil); err == nil {
		t.Fatalf("expected an error for a malformed >> header")
	}
}

func TestRepliconName(t *testing.T) {
	if got := RepliconName("ESCO1_001_0123_seq", "db.fasta", true); got != "ESCO1_001_0123" {
		t.Fatalf("expected ESCO1_001_0123, got %s", got)
	}
	if got := RepliconName("anything", "my_replicon.fasta", false); got != "my_replicon.fasta" {
		t.Fatalf("expected db file name for non-gembase, got %s", got)
	}
}

func TestWriteReadReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hits.tsv")
	rows := []Row{
		{HitID: "h1", RepliconName: "rep1", Position: 10, SeqLength: 300, GeneName: "gspD", IEval: 1e-15, Score: 55.2, ProfileCoverage: 0.9, SequenceCoverage: 0.91, Begin: 5, End: 95},
		{HitID: "h2", RepliconName: "rep1", Position: 20, SeqLength: 280, GeneName: "sctC", IEval: 2e-10, Score: 40.0, ProfileCoverage: 0.8, SequenceCoverage: 0.75, Begin: 1, End: 70},
	}
	if err := WriteReport(path, "macsydetect/1.0", "T2SS", "1.1", "macsydetect --db x", rows); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	got, err := ReadReport(path)
	if err != nil {
		t.Fatalf("ReadReport: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
	for i, want := range rows {
		g := got[i]
		if g.HitID != want.HitID || g.RepliconName != want.RepliconName || g.Position != want.Position ||
			g.SeqLength != want.SeqLength || g.GeneName != want.GeneName || g.Begin != want.Begin || g.End != want.End {
			t.Fatalf("row %d: got %+v, want %+v", i, g, want)
		}
		if !floatEqual(g.IEval, want.IEval) || !floatEqual(g.Score, want.Score) ||
			!floatEqual(g.ProfileCoverage, want.ProfileCoverage) || !floatEqual(g.SequenceCoverage, want.SequenceCoverage) {
			t.Fatalf("row %d: float fields mismatch: got %+v, want %+v", i, g, want)
		}
	}
}

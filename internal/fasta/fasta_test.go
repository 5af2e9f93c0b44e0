package fasta

import (
	"strings"
	"testing"
)

func TestReadOrder(t *testing.T) {
	in := ">seq_1 first protein\nMKV\nLAS\n>seq_2\nMK\n"
	got, err := ReadOrder(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadOrder: %v", err)
	}
	want := []Record{{SeqName: "seq_1", Length: 6}, {SeqName: "seq_2", Length: 2}}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadOrderMalformed(t *testing.T) {
	if _, err := ReadOrder(strings.NewReader("MKV\n")); err == nil {
		t.Fatalf("expected error for sequence data before any header")
	}
}

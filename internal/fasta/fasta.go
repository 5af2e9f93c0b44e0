// Package fasta reads the ordered (seq_id, length) ledger a replicon's
// sequence database provides. It is a narrowed adaptation of
// bio/encoding/fasta: this system only ever needs sequence names, their
// order of appearance, and their lengths -- never random-access
// subsequence extraction, so the indexed-lookup half of that package is
// dropped.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Record is one named sequence's length, in file order.
type Record struct {
	SeqName string
	Length  int
}

// ReadOrder scans a FASTA stream and returns one Record per sequence, in
// the order sequences appear in the file -- the positional order used as
// a replicon's gene order.
//
// Sequence names are the stretch of characters after '>' up to the first
// space, matching bio/encoding/fasta's convention exactly (">chr1 a viral
// sequence" becomes "chr1").
func ReadOrder(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var records []Record
	var cur *Record
	seen := false
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			name := strings.SplitN(line[1:], " ", 2)[0]
			if name == "" {
				return nil, errors.Errorf("malformed FASTA header: %q", line)
			}
			records = append(records, Record{SeqName: name})
			cur = &records[len(records)-1]
			seen = true
			continue
		}
		if !seen {
			return nil, errors.Errorf("malformed FASTA file: sequence data before header")
		}
		cur.Length += len(strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "fasta.ReadOrder")
	}
	return records, nil
}

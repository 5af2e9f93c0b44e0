package profile

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"

	"github.com/gem-pasteur/macsylib/internal/macerr"
)

// Row is one persisted hit record, with columns `hit_id replicon_name
// position_hit hit_sequence_length gene_name i_eval score
// profile_coverage sequence_coverage begin end`.
type Row struct {
	HitID            string
	RepliconName     string
	Position         int
	SeqLength        int
	GeneName         string
	IEval            float64
	Score            float64
	ProfileCoverage  float64
	SequenceCoverage float64
	Begin            int
	End              int
}

var tsvColumns = []string{
	"hit_id", "replicon_name", "position_hit", "hit_sequence_length",
	"gene_name", "i_eval", "score", "profile_coverage", "sequence_coverage",
	"begin", "end",
}

// WriteReport writes rows to path as the `macsyprofile`-style TSV : a run of `#`-comment lines (tool version, model family/version,
// command line) followed by the header row and one row per hit.
func WriteReport(path string, toolVersion, modelFamily, modelVersion, commandLine string, rows []Row) error {
	ctx := context.Background()
	out, err := file.Create(ctx, path)
	if err != nil {
		return macerr.Wrap(macerr.PackageError, "WriteReport", "", err)
	}
	w := bufio.NewWriter(out.Writer(ctx))

	fmt.Fprintf(w, "# tool: %s\n", toolVersion)
	fmt.Fprintf(w, "# model: %s %s\n", modelFamily, modelVersion)
	fmt.Fprintf(w, "# command: %s\n", commandLine)
	fmt.Fprintln(w, strings.Join(tsvColumns, "\t"))
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%g\t%g\t%g\t%g\t%d\t%d\n",
			r.HitID, r.RepliconName, r.Position, r.SeqLength, r.GeneName,
			r.IEval, r.Score, r.ProfileCoverage, r.SequenceCoverage, r.Begin, r.End)
	}
	if err := w.Flush(); err != nil {
		return macerr.Wrap(macerr.PackageError, "WriteReport", "", err)
	}
	return macerr.Wrap(macerr.PackageError, "WriteReport", "", out.Close(ctx))
}

// ReadReport reads back a TSV written by WriteReport, skipping `#`-comment
// lines and the header row ("round-trip" invariant).
func ReadReport(path string) ([]Row, error) {
	ctx := context.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, macerr.Wrap(macerr.PackageError, "ReadReport", "", err)
	}
	defer in.Close(ctx)

	var rows []Row
	scanner := bufio.NewScanner(in.Reader(ctx))
	seenHeader := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if !seenHeader {
			seenHeader = true
			continue
		}
		row, err := parseRow(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, macerr.Wrap(macerr.PackageError, "ReadReport", "", err)
	}
	return rows, nil
}

func parseRow(line string) (Row, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != len(tsvColumns) {
		return Row{}, macerr.New(macerr.PackageError, "parseRow", "", "expected "+strconv.Itoa(len(tsvColumns))+" columns, got "+strconv.Itoa(len(fields)))
	}
	position, err := strconv.Atoi(fields[2])
	if err != nil {
		return Row{}, macerr.Wrap(macerr.PackageError, "parseRow", "", err)
	}
	seqLen, err := strconv.Atoi(fields[3])
	if err != nil {
		return Row{}, macerr.Wrap(macerr.PackageError, "parseRow", "", err)
	}
	iEval, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return Row{}, macerr.Wrap(macerr.PackageError, "parseRow", "", err)
	}
	score, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return Row{}, macerr.Wrap(macerr.PackageError, "parseRow", "", err)
	}
	profCov, err := strconv.ParseFloat(fields[7], 64)
	if err != nil {
		return Row{}, macerr.Wrap(macerr.PackageError, "parseRow", "", err)
	}
	seqCov, err := strconv.ParseFloat(fields[8], 64)
	if err != nil {
		return Row{}, macerr.Wrap(macerr.PackageError, "parseRow", "", err)
	}
	begin, err := strconv.Atoi(fields[9])
	if err != nil {
		return Row{}, macerr.Wrap(macerr.PackageError, "parseRow", "", err)
	}
	end, err := strconv.Atoi(fields[10])
	if err != nil {
		return Row{}, macerr.Wrap(macerr.PackageError, "parseRow", "", err)
	}
	return Row{
		HitID:            fields[0],
		RepliconName:     fields[1],
		Position:         position,
		SeqLength:        seqLen,
		GeneName:         fields[4],
		IEval:            iEval,
		Score:            score,
		ProfileCoverage:  profCov,
		SequenceCoverage: seqCov,
		Begin:            begin,
		End:              end,
	}, nil
}

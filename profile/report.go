package profile

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"

	"github.com/gem-pasteur/macsylib/internal/macerr"
)

// ParsedHit is one domain-table row extracted from a raw HMM report , with the derived coverage statistics already
// computed.
type ParsedHit struct {
	HitID            string
	SeqLength        int
	Score            float64
	IEval            float64
	BeginMatch       int
	EndMatch         int
	ProfileCoverage  float64
	SequenceCoverage float64
}

// ReadProfileInfo reads a gene's HMMER3 profile header (transparently
// decompressing `.hmm.gz`) and extracts its declared length and optional
// GA bit-score threshold.
func ReadProfileInfo(path string) (Info, error) {
	ctx := context.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return Info{}, macerr.Wrap(macerr.MissingProfile, "ReadProfileInfo", "", err)
	}
	defer f.Close(ctx)

	r := f.Reader(ctx)
	var rc io.Reader = r
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return Info{}, macerr.Wrap(macerr.PackageError, "ReadProfileInfo", "", err)
		}
		defer gz.Close()
		rc = gz
	}

	info := Info{Path: path}
	scanner := bufio.NewScanner(rc)
	seenProfiles := 0
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "NAME"):
			// no-op: the gene name is supplied by the caller, who already
			// knows which gene this path belongs to.
		case strings.HasPrefix(line, "LENG"):
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return Info{}, macerr.New(macerr.PackageError, "ReadProfileInfo", "", "malformed LENG line in "+path)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return Info{}, macerr.Wrap(macerr.PackageError, "ReadProfileInfo", "", err)
			}
			info.Length = n
		case strings.HasPrefix(line, "GA "):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				// Malformed GA line is a warning, not fatal.
				continue
			}
			cutoff, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], ";"), 64)
			if err != nil {
				continue
			}
			info.HasGA = true
			info.GACutoff = cutoff
		case line == "//":
			seenProfiles++
		}
	}
	if err := scanner.Err(); err != nil {
		return Info{}, macerr.Wrap(macerr.PackageError, "ReadProfileInfo", "", err)
	}
	if seenProfiles != 1 {
		return Info{}, macerr.New(macerr.PackageError, "ReadProfileInfo", "", path+" must contain exactly one profile, found "+strconv.Itoa(seenProfiles))
	}
	return info, nil
}

// ParseReport parses a raw HMMER3 text report: hit regions begin
// with ">>"; hit_id is the first non-empty token on that line; the
// per-domain table that follows supplies score, i-evalue, and the
// hmm/ali match bounds used to compute coverage.
func ParseReport(reportPath string, profileLength int, seqLengths map[string]int) ([]ParsedHit, error) {
	ctx := context.Background()
	f, err := file.Open(ctx, reportPath)
	if err != nil {
		return nil, macerr.Wrap(macerr.ExternalSearchFailure, "ParseReport", "", err)
	}
	defer f.Close(ctx)

	var hits []ParsedHit
	scanner := bufio.NewScanner(f.Reader(ctx))
	var currentHitID string
	inDomainTable := false
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, ">>"):
			fields := strings.Fields(strings.TrimPrefix(line, ">>"))
			if len(fields) == 0 {
				return nil, macerr.New(macerr.ExternalSearchFailure, "ParseReport", "", "malformed >> header in "+reportPath)
			}
			currentHitID = fields[0]
			inDomainTable = false
		case strings.Contains(line, "score") && strings.Contains(line, "bias") && strings.Contains(line, "i-Evalue"):
			inDomainTable = true
		case inDomainTable:
			fields := strings.Fields(line)
			if len(fields) < 15 {
				// The dashed separator row (and any other short line inside
				// the table) carries no data; skip without leaving the
				// table, which ends only at the next ">>" header.
				continue
			}
			hit, err := parseDomainRow(currentHitID, fields, profileLength, seqLengths[currentHitID])
			if err != nil {
				return nil, err
			}
			hits = append(hits, hit)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, macerr.Wrap(macerr.ExternalSearchFailure, "ParseReport", "", err)
	}
	return hits, nil
}

// parseDomainRow decodes one row of the HMMER3 "domain annotation" table.
// Column layout (0-indexed): # ! score bias c-Evalue i-Evalue hmm_from
// hmm_to .. ali_from ali_to .. env_from env_to acc.
func parseDomainRow(hitID string, fields []string, profileLength, seqLength int) (ParsedHit, error) {
	score, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return ParsedHit{}, macerr.Wrap(macerr.ExternalSearchFailure, "parseDomainRow", "", err)
	}
	iEval, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return ParsedHit{}, macerr.Wrap(macerr.ExternalSearchFailure, "parseDomainRow", "", err)
	}
	hmmFrom, err := strconv.Atoi(fields[6])
	if err != nil {
		return ParsedHit{}, macerr.Wrap(macerr.ExternalSearchFailure, "parseDomainRow", "", err)
	}
	hmmTo, err := strconv.Atoi(fields[7])
	if err != nil {
		return ParsedHit{}, macerr.Wrap(macerr.ExternalSearchFailure, "parseDomainRow", "", err)
	}
	aliFrom, err := strconv.Atoi(fields[9])
	if err != nil {
		return ParsedHit{}, macerr.Wrap(macerr.ExternalSearchFailure, "parseDomainRow", "", err)
	}
	aliTo, err := strconv.Atoi(fields[10])
	if err != nil {
		return ParsedHit{}, macerr.Wrap(macerr.ExternalSearchFailure, "parseDomainRow", "", err)
	}

	hit := ParsedHit{
		HitID:      hitID,
		SeqLength:  seqLength,
		Score:      score,
		IEval:      iEval,
		BeginMatch: aliFrom,
		EndMatch:   aliTo,
	}
	if profileLength > 0 {
		hit.ProfileCoverage = float64(hmmTo-hmmFrom+1) / float64(profileLength)
	}
	if seqLength > 0 {
		hit.SequenceCoverage = float64(aliTo-aliFrom+1) / float64(seqLength)
	}
	return hit, nil
}

// SelectHits keeps the rows meeting selection rule: i_eval <=
// iEvalueSel AND profile_coverage >= coverageThreshold.
func SelectHits(hits []ParsedHit, iEvalueSel, coverageThreshold float64) []ParsedHit {
	var out []ParsedHit
	for _, h := range hits {
		if h.IEval <= iEvalueSel && h.ProfileCoverage >= coverageThreshold {
			out = append(out, h)
		}
	}
	return out
}

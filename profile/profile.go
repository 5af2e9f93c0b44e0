// Package profile implements the HMM profile facade boundary: profile
// metadata, the search primitive contract, result parsing, the persisted
// TSV report, and the per-profile cache.
package profile

import (
	"context"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/gem-pasteur/macsylib/internal/config"
)

// Info describes a gene's profile independent of any search:
// its length and whether it carries a GA bit-score threshold.
type Info struct {
	GeneName string
	Path     string
	Length   int
	HasGA    bool
	GACutoff float64
}

// Searcher runs the external HMM search primitive: given a
// profile path, a sequence DB path, a CPU count and a thresholding policy,
// it produces a raw HMMER3 text report at reportPath, or an error if the
// child process exited non-zero for a reason other than cancellation
// ("ExternalSearchFailure").
type Searcher interface {
	Search(ctx context.Context, profilePath, dbPath string, cpus int, cutGA bool, eValue float64) (reportPath string, err error)
}

// Facade is the boundary the core detection pipeline calls through: it
// owns the per-(profile, database) cache so multiple models sharing a
// profile execute the HMM search at most once.
type Facade struct {
	searcher Searcher
	cfg      config.Config
	cache    *cache
}

// NewFacade builds a Facade backed by searcher.
func NewFacade(searcher Searcher, cfg config.Config) *Facade {
	return &Facade{searcher: searcher, cfg: cfg, cache: newCache()}
}

// searchKey identifies one cached search: a gene's profile path and the
// path of the DB it was run against.
type searchKey struct {
	profilePath string
	dbPath      string
}

// Search runs (or reuses a cached run of) the HMM search for profilePath
// against dbPath, parses the raw report, and returns the selected
// ParsedHits (i_eval/profile_coverage selection rule). cut_ga is only requested of
// the searcher when both the config flag and the profile's own GA
// threshold (info.HasGA) hold; a profile lacking a GA line falls back to
// EValueSearch with a warning, matching profile.py's cut_ga handling.
func (f *Facade) Search(ctx context.Context, geneName, profilePath, dbPath string, seqLengths map[string]int) ([]ParsedHit, error) {
	key := searchKey{profilePath: profilePath, dbPath: dbPath}
	return f.cache.searchOnce(key, func() ([]ParsedHit, error) {
		info, err := ReadProfileInfo(profilePath)
		if err != nil {
			return nil, err
		}
		cutGA := f.cfg.CutGA && info.HasGA
		if f.cfg.CutGA && !info.HasGA {
			log.Printf("profile %s has no GA threshold, falling back to -E %g", geneName, f.cfg.EValueSearch)
		}
		cpus := f.cfg.CPUPerWorker
		if cpus <= 0 {
			cpus = max(1, runtime.NumCPU()/max(1, f.cfg.Workers))
		}
		reportPath, err := f.searcher.Search(ctx, profilePath, dbPath, cpus, cutGA, f.cfg.EValueSearch)
		if err != nil {
			return nil, err
		}
		raw, err := ParseReport(reportPath, info.Length, seqLengths)
		if err != nil {
			return nil, err
		}
		return SelectHits(raw, f.cfg.IEvalueSel, f.cfg.CoverageProfile), nil
	})
}

// SearchAll runs Search concurrently across genes using a worker pool of
// size W ("worker pool of size W with C threads per search").
// Each goroutine writes only to its own slot; aggregation into the
// returned map happens after traverse.Each returns, so the result map is
// built without concurrent writes.
func (f *Facade) SearchAll(ctx context.Context, genes []string, profilePaths map[string]string, dbPath string, seqLengths map[string]int, workers int) (map[string][]ParsedHit, error) {
	perGene := make([][]ParsedHit, len(genes))
	err := traverse.Each(workers, func(i int) error {
		hits, err := f.Search(ctx, genes[i], profilePaths[genes[i]], dbPath, seqLengths)
		if err != nil {
			return err
		}
		perGene[i] = hits
		return nil
	})
	if err != nil {
		return nil, err
	}
	results := make(map[string][]ParsedHit, len(genes))
	for i, gene := range genes {
		results[gene] = perGene[i]
	}
	return results, nil
}

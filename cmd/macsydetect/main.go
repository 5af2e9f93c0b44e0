// Command macsydetect detects macromolecular systems in a replicon by
// searching a set of model definitions' HMM profiles against a sequence
// database, clustering the resulting hits, and selecting the best-scoring,
// non-conflicting set of systems.
//
// Usage:
//
//	macsydetect --models-dir defs/ --db-path proteome.fasta --out-dir out/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/gem-pasteur/macsylib/cluster"
	"github.com/gem-pasteur/macsylib/combination"
	"github.com/gem-pasteur/macsylib/hit"
	"github.com/gem-pasteur/macsylib/internal/config"
	"github.com/gem-pasteur/macsylib/internal/fasta"
	"github.com/gem-pasteur/macsylib/modeldef"
	"github.com/gem-pasteur/macsylib/profile"
	"github.com/gem-pasteur/macsylib/replicon"
	"github.com/gem-pasteur/macsylib/solution"
	"github.com/gem-pasteur/macsylib/system"
)

// detectFlags is one struct holding every run option, populated directly
// by flag.*Var, no indirection.
type detectFlags struct {
	modelsDir string
	dbPath    string
	outDir    string

	workers      int
	cpuPerWorker int
	eValueSearch float64
	iEvalueSel   float64
	coverage     float64
	cutGA        bool
	dbType       string
	multiLoci    bool
}

func loadModels(modelsDir string, ctx *modeldef.Context) ([]*modeldef.Model, error) {
	var models []*modeldef.Model
	err := filepath.Walk(modelsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".xml") {
			return nil
		}
		rel, err := filepath.Rel(modelsDir, path)
		if err != nil {
			return err
		}
		fqn := strings.TrimSuffix(filepath.ToSlash(rel), ".xml")

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		m, err := modeldef.LoadXML(f, fqn, ctx)
		if err != nil {
			return err
		}
		models = append(models, m)
		return nil
	})
	return models, err
}

// groupByReplicon splits db's sequences into per-replicon runs, the way a
// gembase-formatted multi-replicon FASTA packs one genome's contigs
// consecutively, and assigns each sequence its 1-based position within its
// own run.
func groupByReplicon(records []fasta.Record, dbFileName string, dbType config.DBType) (map[string]replicon.Info, map[string]int) {
	gembase := dbType == config.DBGembase
	order := make(map[string][]fasta.Record)
	var names []string
	for _, r := range records {
		name := profile.RepliconName(r.SeqName, dbFileName, gembase)
		if _, ok := order[name]; !ok {
			names = append(names, name)
		}
		order[name] = append(order[name], r)
	}

	replicons := make(map[string]replicon.Info, len(names))
	positions := make(map[string]int, len(records))
	for _, name := range names {
		genes := make([]replicon.GeneEntry, 0, len(order[name]))
		for i, r := range order[name] {
			genes = append(genes, replicon.GeneEntry{SeqID: r.SeqName, Length: r.Length})
			positions[r.SeqName] = i + 1
		}
		replicons[name] = replicon.New(name, replicon.Linear, genes)
	}
	return replicons, positions
}

// modelGenePaths returns every profile path a model references, keyed by
// gene name, and the reverse mapping used to resolve a search result back
// to the GeneRef that produced it.
func modelGenePaths(m *modeldef.Model, ctx *modeldef.Context) (map[string]string, map[string]modeldef.GeneRef) {
	paths := make(map[string]string)
	refs := make(map[string]modeldef.GeneRef)
	all := append(append(append(append([]modeldef.GeneRef{}, m.Mandatory()...), m.Accessory()...), m.Neutral()...), m.Forbidden()...)
	for _, ref := range all {
		g := m.Gene(ref)
		core := ctx.Genes.Get(g.CoreGeneRef)
		paths[g.Name] = core.ProfilePath
		refs[g.Name] = ref
		for _, exRef := range g.Exchangeables() {
			exG := m.Gene(exRef)
			exCore := ctx.Genes.Get(exG.CoreGeneRef)
			paths[exG.Name] = exCore.ProfilePath
			refs[exG.Name] = exRef
		}
	}
	return paths, refs
}

// buildHits turns one gene's selected ParsedHits into ModelHits, resolving
// each to its replicon by name and its position within it.
func buildHits(m *modeldef.Model, ref modeldef.GeneRef, parsed []profile.ParsedHit, dbFileName string, dbType config.DBType, positions map[string]int) []hit.ModelHit {
	gembase := dbType == config.DBGembase
	out := make([]hit.ModelHit, 0, len(parsed))
	for _, p := range parsed {
		pos, ok := positions[p.HitID]
		if !ok {
			continue
		}
		core := hit.CoreHit{
			GeneRef:          m.Gene(ref).CoreGeneRef,
			HitID:            p.HitID,
			SeqLength:        p.SeqLength,
			RepliconName:     profile.RepliconName(p.HitID, dbFileName, gembase),
			Position:         pos,
			IEval:            p.IEval,
			Score:            p.Score,
			ProfileCoverage:  p.ProfileCoverage,
			SequenceCoverage: p.SequenceCoverage,
			BeginMatch:       p.BeginMatch,
			EndMatch:         p.EndMatch,
		}
		out = append(out, hit.New(core, m, ref))
	}
	return out
}

// detectModel runs the full per-model pipeline: search, cluster, combine,
// validate, select. It returns the model's surviving solutions.
func detectModel(ctx context.Context, m *modeldef.Model, mctx *modeldef.Context, facade *profile.Facade, records []fasta.Record, dbPath string, cfg config.Config) ([]*solution.Solution, error) {
	dbFileName := filepath.Base(dbPath)
	replicons, positions := groupByReplicon(records, dbFileName, cfg.DBType)

	seqLengths := make(map[string]int, len(records))
	for _, r := range records {
		seqLengths[r.SeqName] = r.Length
	}

	paths, refs := modelGenePaths(m, mctx)
	genes := make([]string, 0, len(paths))
	for name := range paths {
		genes = append(genes, name)
	}
	sort.Strings(genes)

	results, err := facade.SearchAll(ctx, genes, paths, dbPath, seqLengths, cfg.Workers)
	if err != nil {
		return nil, err
	}

	var allHits []hit.ModelHit
	for _, name := range genes {
		allHits = append(allHits, buildHits(m, refs[name], results[name], dbFileName, cfg.DBType, positions)...)
	}

	byReplicon := make(map[string][]hit.ModelHit)
	for _, h := range allHits {
		byReplicon[h.Core.RepliconName] = append(byReplicon[h.Core.RepliconName], h)
	}

	ids := &cluster.IDGen{}
	var allClusters []*cluster.Cluster
	for name, hits := range byReplicon {
		rep, ok := replicons[name]
		if !ok {
			continue
		}
		clusters, err := cluster.BuildOnDistance(ids, cfg.Weights, m, hits, rep)
		if err != nil {
			return nil, err
		}
		allClusters = append(allClusters, clusters...)
	}

	trueLoners, trueClusters, err := cluster.ExtractTrueLoners(ids, cfg.Weights, cfg.BestHitCriterion, allClusters)
	if err != nil {
		return nil, err
	}

	var multiSystemClusters []*cluster.Cluster
	for _, c := range trueClusters {
		if len(c.Hits) == 1 && c.Hits[0].IsMultiSystem() {
			multiSystemClusters = append(multiSystemClusters, c)
		}
	}

	combos := combination.Generate(m.MultiLoci || cfg.MultiLoci, trueClusters, trueLoners)

	var systems []*system.System
	var rejectedCombos []combination.Combination
	nextID := 0
	for _, combo := range combos {
		sys, rejected, err := system.Validate(nextID, m, combo)
		if err != nil {
			return nil, err
		}
		if sys != nil {
			systems = append(systems, sys)
			nextID++
		} else if rejected != nil {
			rejectedCombos = append(rejectedCombos, combo)
		}
	}

	if len(multiSystemClusters) > 0 {
		recombined := combination.GenerateMultiSystemRecombination(rejectedCombos, multiSystemClusters)
		for _, combo := range recombined {
			sys, _, err := system.Validate(nextID, m, combo)
			if err != nil {
				return nil, err
			}
			if sys != nil {
				systems = append(systems, sys)
				nextID++
			}
		}
	}

	return solution.Select(systems), nil
}

func writeSolutions(path, toolVersion, commandLine string, solutions []*solution.Solution) error {
	var rows []profile.Row
	for _, sol := range solutions {
		for _, sys := range sol.Systems {
			for _, c := range sys.Clusters {
				for _, h := range c.Hits {
					rows = append(rows, profile.Row{
						HitID:            h.Core.HitID,
						RepliconName:     h.Core.RepliconName,
						Position:         h.Core.Position,
						SeqLength:        h.Core.SeqLength,
						GeneName:         h.Model.Gene(h.GeneRef).Name,
						IEval:            h.Core.IEval,
						Score:            h.Core.Score,
						ProfileCoverage:  h.Core.ProfileCoverage,
						SequenceCoverage: h.Core.SequenceCoverage,
						Begin:            h.Core.BeginMatch,
						End:              h.Core.EndMatch,
					})
				}
			}
		}
	}
	family := ""
	vers := ""
	if len(solutions) > 0 && len(solutions[0].Systems) > 0 {
		family = solutions[0].Systems[0].Model.FamilyName()
		vers = solutions[0].Systems[0].Model.Vers
	}
	return profile.WriteReport(path, toolVersion, family, vers, commandLine, rows)
}

func run(ctx context.Context, flags detectFlags) error {
	cfg := config.Default()
	cfg.Workers = flags.workers
	cfg.CPUPerWorker = flags.cpuPerWorker
	cfg.EValueSearch = flags.eValueSearch
	cfg.IEvalueSel = flags.iEvalueSel
	cfg.CoverageProfile = flags.coverage
	cfg.CutGA = flags.cutGA
	cfg.DBType = config.DBType(flags.dbType)
	cfg.MultiLoci = flags.multiLoci

	mctx := modeldef.NewContext()
	models, err := loadModels(flags.modelsDir, mctx)
	if err != nil {
		return err
	}
	log.Printf("loaded %d model(s) from %s", len(models), flags.modelsDir)

	dbFile, err := file.Open(ctx, flags.dbPath)
	if err != nil {
		return err
	}
	records, err := fasta.ReadOrder(dbFile.Reader(ctx))
	dbFile.Close(ctx)
	if err != nil {
		return err
	}
	log.Printf("indexed %d sequence(s) from %s", len(records), flags.dbPath)

	facade := profile.NewFacade(profile.HMMSearcher{}, cfg)

	if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
		return err
	}

	commandLine := strings.Join(os.Args, " ")
	start := time.Now()
	var totalSystems int
	for _, m := range models {
		solutions, err := detectModel(ctx, m, mctx, facade, records, flags.dbPath, cfg)
		if err != nil {
			return fmt.Errorf("model %s: %w", m.FQN, err)
		}
		for _, sol := range solutions {
			totalSystems += len(sol.Systems)
		}
		outPath := filepath.Join(flags.outDir, strings.ReplaceAll(m.FQN, "/", "_")+".tsv")
		if err := writeSolutions(outPath, "macsydetect/1.0", commandLine, solutions); err != nil {
			return err
		}
		log.Printf("model %s: %d solution(s) written to %s", m.FQN, len(solutions), outPath)
	}

	log.Printf("done: %s system(s) across %d model(s) in %s",
		humanize.Comma(int64(totalSystems)), len(models), time.Since(start).Round(time.Millisecond))
	return nil
}

func main() {
	var flags detectFlags
	flag.StringVar(&flags.modelsDir, "models-dir", "", "directory of model definitions/*.xml to search")
	flag.StringVar(&flags.dbPath, "db-path", "", "FASTA sequence database to search against")
	flag.StringVar(&flags.outDir, "out-dir", "./macsydetect-results", "directory solution reports are written to")
	flag.IntVar(&flags.workers, "workers", 1, "size of the HMM search worker pool")
	flag.IntVar(&flags.cpuPerWorker, "cpu-per-worker", 0, "threads passed to each HMM search (0: number of CPUs / workers, at least 1)")
	flag.Float64Var(&flags.eValueSearch, "e-value", 1.0, "HMM search inclusion e-value threshold")
	flag.Float64Var(&flags.iEvalueSel, "i-evalue-sel", 0.001, "post-search independent e-value selection cutoff")
	flag.Float64Var(&flags.coverage, "coverage-profile", 0.5, "minimum profile coverage fraction for a hit to be selected")
	flag.BoolVar(&flags.cutGA, "cut-ga", true, "prefer each profile's built-in GA threshold over --e-value")
	flag.StringVar(&flags.dbType, "db-type", string(config.DBGembase), "database layout: gembase, ordered_replicon, or unordered")
	flag.BoolVar(&flags.multiLoci, "multi-loci", false, "allow systems to be built from more than one cluster by default")
	flag.Parse()

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if flags.modelsDir == "" || flags.dbPath == "" {
		log.Fatal("both --models-dir and --db-path are required")
	}
	if err := run(ctx, flags); err != nil {
		log.Fatal(err)
	}
}

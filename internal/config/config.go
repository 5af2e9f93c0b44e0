// Package config holds the enumerated run options of the detection pipeline
// and the default hit-scoring weights, in the style of fusion.Opts /
// fusion.DefaultOpts: a plain struct populated by flags, no indirection.
package config

// DBType names the layout of the target sequence database.
type DBType string

// The three supported database layouts ("Replicon naming").
const (
	DBGembase         DBType = "gembase"
	DBOrderedReplicon  DBType = "ordered_replicon"
	DBUnordered        DBType = "unordered"
)

// HitWeight configures the per-status and per-variant score multipliers used
// by the scorer.
type HitWeight struct {
	Itself        float64
	Exchangeable  float64
	Mandatory     float64
	Accessory     float64
	Neutral       float64
	OutOfCluster  float64
}

// DefaultHitWeight is the standard scoring weight set.
var DefaultHitWeight = HitWeight{
	Itself:       1.0,
	Exchangeable: 0.8,
	Mandatory:    1.0,
	Accessory:    0.5,
	Neutral:      0.0,
	OutOfCluster: 0.7,
}

// BestHitCriterion selects which statistic ranks loner/multi-system
// candidates within a function when picking the best representative.
type BestHitCriterion string

const (
	CriterionScore            BestHitCriterion = "score"
	CriterionIEvalue          BestHitCriterion = "i_eval"
	CriterionProfileCoverage  BestHitCriterion = "profile_coverage"
)

// Config is the set of options the detection pipeline is run with. Every
// field here is named in "Configuration" design note.
type Config struct {
	// InterGeneMaxSpace holds a default maximum distance (in genes) between
	// two colocalizing hits. The pipeline does not read it: each model's
	// distance comes from its own inter_gene_max_space XML attribute, and a
	// gene-level value overrides that.
	InterGeneMaxSpace int

	// EValueSearch is the HMM inclusion threshold passed to the search
	// primitive.
	EValueSearch float64
	// IEvalueSel is the post-search i-evalue cap applied by the hit store.
	IEvalueSel float64
	// CoverageProfile is the minimum profile-coverage fraction a hit must
	// reach to be selected.
	CoverageProfile float64
	// CutGA, when true, makes the profile facade prefer a profile's GA
	// bit-score threshold over EValueSearch; IEvalueSel and CoverageProfile
	// are still applied to the hits the search returns.
	CutGA bool

	// Weights are the per-status/per-variant scoring multipliers.
	Weights HitWeight

	// BestHitCriterion picks the tie-break rule used by the loner/multi-system
	// registry.
	BestHitCriterion BestHitCriterion

	// MultiLoci, when a model sets it, allows systems to be built from more
	// than one cluster. This is the model-level flag; the config field is
	// the fallback used by tests and by models that don't override it.
	MultiLoci bool

	// DBType controls how hit_id is decoded into a replicon name.
	DBType DBType

	// Workers is the size of the HMM worker pool (W). CPUPerWorker
	// is threads-per-search (C); zero means derive it from
	// runtime.NumCPU()/Workers.
	Workers      int
	CPUPerWorker int

	// OutDir is the per-run output directory persisted state is written to.
	OutDir string
}

// Default returns the configuration used when no flag overrides anything.
func Default() Config {
	return Config{
		InterGeneMaxSpace: 5,
		EValueSearch:      1.0,
		IEvalueSel:        0.001,
		CoverageProfile:   0.5,
		CutGA:             true,
		Weights:           DefaultHitWeight,
		BestHitCriterion:  CriterionScore,
		MultiLoci:         false,
		DBType:            DBGembase,
		Workers:           1,
		CPUPerWorker:      0,
	}
}

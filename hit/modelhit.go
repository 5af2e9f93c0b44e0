package hit

import (
	"github.com/gem-pasteur/macsylib/internal/config"
	"github.com/gem-pasteur/macsylib/internal/macerr"
	"github.com/gem-pasteur/macsylib/modeldef"
)

// Kind discriminates the ModelHit variant family: a tagged sum rather
// than an inheritance hierarchy, since every variant carries the
// same CoreHit payload and differs only by which capabilities (counterpart
// set, out-of-cluster score multiplier) apply.
type Kind int

const (
	// Plain is an ordinary hit embedded in a multi-hit cluster.
	Plain Kind = iota
	// Loner is a hit whose gene is declared loner and which sits outside any
	// multi-hit cluster.
	Loner
	// MultiSystem is a hit whose gene may contribute to multiple systems at
	// once.
	MultiSystem
	// LonerMultiSystem is both at once.
	LonerMultiSystem
)

// ModelHit wraps a CoreHit with the model gene it represents and that
// gene's status.
type ModelHit struct {
	Core    CoreHit
	Model   *modeldef.Model
	GeneRef modeldef.GeneRef
	Status  modeldef.GeneStatus
	Kind    Kind

	// Counterpart holds the other ModelHits functionally equivalent to this
	// one; only populated for Loner/MultiSystem/LonerMultiSystem variants.
	Counterpart []ModelHit
}

// New builds a Plain ModelHit.
func New(core CoreHit, model *modeldef.Model, ref modeldef.GeneRef) ModelHit {
	g := model.Gene(ref)
	return ModelHit{Core: core, Model: model, GeneRef: ref, Status: g.Status, Kind: Plain}
}

// FunctionName returns the canonical functional name of this hit's gene
// (its primary identity under exchangeable resolution).
func (h ModelHit) FunctionName() string { return h.Model.FunctionName(h.GeneRef) }

// IsExchangeable reports whether this hit's gene is an alternate identity
// rather than a model's primary gene for its function.
func (h ModelHit) IsExchangeable() bool { return h.Model.IsExchangeable(h.GeneRef) }

// IsLoner reports whether this variant carries loner semantics.
func (h ModelHit) IsLoner() bool { return h.Kind == Loner || h.Kind == LonerMultiSystem }

// IsMultiSystem reports whether this variant carries multi-system
// semantics.
func (h ModelHit) IsMultiSystem() bool { return h.Kind == MultiSystem || h.Kind == LonerMultiSystem }

func validateCounterpart(function string, counterpart []ModelHit) error {
	for _, c := range counterpart {
		if c.FunctionName() != function {
			return macerr.New(macerr.IncompatibleCounterpart, "validateCounterpart", "", "counterpart hit resolves to function "+c.FunctionName()+", expected "+function)
		}
	}
	return nil
}

// AsLoner promotes a ModelHit to the Loner variant. The underlying gene
// must be declared loner ("InvalidLoner").
func AsLoner(h ModelHit, counterpart []ModelHit) (ModelHit, error) {
	if !h.Model.Gene(h.GeneRef).Loner {
		return ModelHit{}, macerr.New(macerr.InvalidLoner, "AsLoner", h.Model.FQN, "gene "+h.Model.Gene(h.GeneRef).Name+" is not declared loner")
	}
	if err := validateCounterpart(h.FunctionName(), counterpart); err != nil {
		return ModelHit{}, err
	}
	h.Kind = Loner
	h.Counterpart = counterpart
	return h, nil
}

// AsMultiSystem promotes a ModelHit to the MultiSystem variant. The
// underlying gene must be declared multi_system, or this returns an
// InvalidMultiSystem error.
func AsMultiSystem(h ModelHit, counterpart []ModelHit) (ModelHit, error) {
	if !h.Model.Gene(h.GeneRef).MultiSystem {
		return ModelHit{}, macerr.New(macerr.InvalidMultiSystem, "AsMultiSystem", h.Model.FQN, "gene "+h.Model.Gene(h.GeneRef).Name+" is not declared multi_system")
	}
	if err := validateCounterpart(h.FunctionName(), counterpart); err != nil {
		return ModelHit{}, err
	}
	h.Kind = MultiSystem
	h.Counterpart = counterpart
	return h, nil
}

// AsLonerMultiSystem promotes a ModelHit to the LonerMultiSystem variant.
// The gene must be both loner and multi_system.
func AsLonerMultiSystem(h ModelHit, counterpart []ModelHit) (ModelHit, error) {
	g := h.Model.Gene(h.GeneRef)
	if !g.Loner || !g.MultiSystem {
		return ModelHit{}, macerr.New(macerr.InvalidLoner, "AsLonerMultiSystem", h.Model.FQN, "gene "+g.Name+" must be both loner and multi_system")
	}
	if err := validateCounterpart(h.FunctionName(), counterpart); err != nil {
		return ModelHit{}, err
	}
	h.Kind = LonerMultiSystem
	h.Counterpart = counterpart
	return h, nil
}

// BaseWeight returns the per-hit score contribution before any
// cluster-level out-of-cluster multiplier is applied: the
// status weight, scaled by the exchangeable multiplier when this hit's
// gene is an alternate identity.
func (h ModelHit) BaseWeight(w config.HitWeight) (float64, error) {
	var base float64
	switch h.Status {
	case modeldef.Mandatory:
		base = w.Mandatory
	case modeldef.Accessory:
		base = w.Accessory
	case modeldef.Neutral:
		base = w.Neutral
	case modeldef.Forbidden:
		return 0, macerr.New(macerr.ModelInconsistency, "BaseWeight", h.Model.FQN, "cannot score a forbidden hit")
	default:
		return 0, macerr.New(macerr.ModelInconsistency, "BaseWeight", h.Model.FQN, "unknown gene status")
	}
	if h.IsExchangeable() {
		base *= w.Exchangeable
	} else {
		base *= w.Itself
	}
	return base, nil
}

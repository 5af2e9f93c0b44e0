package modeldef

import (
	"encoding/xml"
	"io"
	"path"
	"strconv"

	"github.com/gem-pasteur/macsylib/internal/macerr"
)

// xmlModel mirrors the definitions/*.xml schema. Field names follow the
// on-disk attribute names verbatim; translation into the arena
// representation happens in LoadXML.
type xmlModel struct {
	XMLName                   xml.Name  `xml:"model"`
	Vers                      string    `xml:"vers,attr"`
	InterGeneMaxSpace         int       `xml:"inter_gene_max_space,attr"`
	MinMandatoryGenesRequired *int      `xml:"min_mandatory_genes_required,attr"`
	MinGenesRequired          *int      `xml:"min_genes_required,attr"`
	MaxNbGenes                *int      `xml:"max_nb_genes,attr"`
	MultiLoci                 bool      `xml:"multi_loci,attr"`
	Genes                     []xmlGene `xml:"gene"`
}

type xmlGene struct {
	Name              string        `xml:"name,attr"`
	Presence          string        `xml:"presence,attr"`
	Loner             bool          `xml:"loner,attr"`
	MultiSystem       bool          `xml:"multi_system,attr"`
	MultiModel        bool          `xml:"multi_model,attr"`
	InterGeneMaxSpace *int          `xml:"inter_gene_max_space,attr"`
	Exchangeables     xmlExchangeables `xml:"exchangeables"`
}

type xmlExchangeables struct {
	Genes []xmlExchangeableGene `xml:"gene"`
}

type xmlExchangeableGene struct {
	Name string `xml:"name,attr"`
}

func statusFromPresence(presence string) (GeneStatus, error) {
	switch presence {
	case "mandatory":
		return Mandatory, nil
	case "accessory":
		return Accessory, nil
	case "neutral":
		return Neutral, nil
	case "forbidden":
		return Forbidden, nil
	default:
		return 0, macerr.New(macerr.ModelInconsistency, "statusFromPresence", "", "unknown presence value "+strconv.Quote(presence))
	}
}

// LoadXML parses one definitions/*.xml document into a Model registered
// under fqn in ctx, resolving each gene's CoreGeneRef via ctx.Genes (adding
// it if this is the first model to reference that gene name). fqn is the
// model's family/.../name path as derived from the definitions/ directory
// layout; family is fqn's first path segment.
func LoadXML(r io.Reader, fqn string, ctx *Context) (*Model, error) {
	var doc xmlModel
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, macerr.Wrap(macerr.ModelInconsistency, "LoadXML", fqn, err)
	}

	m := NewModel(fqn, doc.InterGeneMaxSpace)
	m.Vers = doc.Vers
	m.MultiLoci = doc.MultiLoci
	if doc.MinMandatoryGenesRequired != nil {
		m.MinMandatoryGenesRequired = *doc.MinMandatoryGenesRequired
	}
	if doc.MinGenesRequired != nil {
		m.MinGenesRequired = *doc.MinGenesRequired
	}
	if doc.MaxNbGenes != nil {
		m.MaxNbGenes = *doc.MaxNbGenes
	}

	family := m.FamilyName()
	for _, xg := range doc.Genes {
		status, err := statusFromPresence(xg.Presence)
		if err != nil {
			return nil, macerr.New(macerr.ModelInconsistency, "LoadXML", fqn, "gene "+xg.Name+": "+err.Error())
		}
		profilePath := path.Join("profiles", xg.Name+".hmm")
		core := ctx.Genes.Add(family, xg.Name, profilePath)
		ref, err := m.AddGene(core, xg.Name, status, xg.Loner, xg.MultiSystem, xg.MultiModel, xg.InterGeneMaxSpace)
		if err != nil {
			return nil, err
		}
		for _, ex := range xg.Exchangeables.Genes {
			exCore := ctx.Genes.Add(family, ex.Name, path.Join("profiles", ex.Name+".hmm"))
			if _, err := m.AddExchangeable(ref, exCore, ex.Name); err != nil {
				return nil, err
			}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Models.Add(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Package modelpkg implements the model package boundary: archive
// install, metadata.yml parsing, and the warnings the loader collects for
// malformed or missing ancillary files.
package modelpkg

import (
	"context"

	"github.com/grailbio/base/file"
	"gopkg.in/yaml.v3"

	"github.com/gem-pasteur/macsylib/internal/macerr"
)

// Maintainer is the required `maintainer` block of metadata.yml.
type Maintainer struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Metadata is the parsed contents of a model package's metadata.yml : `maintainer` and `short_desc` are required; the rest are optional.
type Metadata struct {
	Maintainer Maintainer `yaml:"maintainer"`
	ShortDesc  string     `yaml:"short_desc"`
	Cite       []string   `yaml:"cite,omitempty"`
	Doc        string     `yaml:"doc,omitempty"`
	License    string     `yaml:"license,omitempty"`
	Copyright  string     `yaml:"copyright,omitempty"`
}

// ReadMetadata parses path as a model package's metadata.yml, rejecting a
// package missing either required field ("PackageError").
func ReadMetadata(path string) (Metadata, error) {
	ctx := context.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return Metadata{}, macerr.Wrap(macerr.PackageError, "ReadMetadata", "", err)
	}
	defer f.Close(ctx)

	dec := yaml.NewDecoder(f.Reader(ctx))
	var m Metadata
	if err := dec.Decode(&m); err != nil {
		return Metadata{}, macerr.Wrap(macerr.PackageError, "ReadMetadata", "", err)
	}
	if m.Maintainer.Name == "" || m.Maintainer.Email == "" {
		return Metadata{}, macerr.New(macerr.PackageError, "ReadMetadata", "", "metadata.yml missing maintainer name/email")
	}
	if m.ShortDesc == "" {
		return Metadata{}, macerr.New(macerr.PackageError, "ReadMetadata", "", "metadata.yml missing short_desc")
	}
	return m, nil
}

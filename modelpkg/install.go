package modelpkg

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/log"

	"github.com/gem-pasteur/macsylib/internal/macerr"
)

// Install unpacks a `.tar.gz`/`.tgz` model package archive at archivePath
// into destDir ("Archive format"): the top-level directory name is
// stripped and replaced by destDir's own name, and any entry attempting to
// escape destDir is refused ("PackageError").
//
// archive/tar + compress/gzip are standard-library here: no third-party
// tar/gzip-archive library appears anywhere in the retrieved example
// repos, and this is the only component in the module that needs one.
func Install(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return macerr.Wrap(macerr.PackageError, "Install", "", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return macerr.Wrap(macerr.PackageError, "Install", "", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return macerr.Wrap(macerr.PackageError, "Install", "", err)
	}

	tr := tar.NewReader(gz)
	var topLevel string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return macerr.Wrap(macerr.PackageError, "Install", "", err)
		}

		name := strings.TrimPrefix(hdr.Name, "./")
		if name == "" || name == "." {
			continue
		}
		segments := strings.SplitN(name, "/", 2)
		if topLevel == "" {
			topLevel = segments[0]
		}
		rel := ""
		if len(segments) == 2 {
			rel = segments[1]
		}
		if rel == "" {
			continue
		}

		target := filepath.Join(destDir, filepath.Clean(rel))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return macerr.New(macerr.PackageError, "Install", "", "archive entry "+hdr.Name+" escapes the target directory")
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return macerr.Wrap(macerr.PackageError, "Install", "", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return macerr.Wrap(macerr.PackageError, "Install", "", err)
			}
			if err := writeRegularFile(target, tr, hdr); err != nil {
				return err
			}
		default:
			log.Printf("skipping archive entry %s of unsupported type", hdr.Name)
		}
	}
	return nil
}

func writeRegularFile(target string, r io.Reader, hdr *tar.Header) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode&0o777))
	if err != nil {
		return macerr.Wrap(macerr.PackageError, "writeRegularFile", "", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return macerr.Wrap(macerr.PackageError, "writeRegularFile", "", err)
	}
	return nil
}

// Warnings collects the non-fatal diagnostics worth surfacing for a model
// package: extra profile files unreferenced by any model, and a missing
// README or LICENSE.
type Warnings struct {
	UnreferencedProfiles []string
	MissingReadme        bool
	MissingLicense       bool
}

// CheckAncillary inspects a freshly-installed package directory for the
// warning conditions above, logging each as it is found (the way
// cluster.ExtractTrueLoners logs a diagnostic per squashed true-loner
// cluster) without failing the install.
func CheckAncillary(dir string, referencedProfiles map[string]bool) (Warnings, error) {
	var w Warnings

	profilesDir := filepath.Join(dir, "profiles")
	entries, err := os.ReadDir(profilesDir)
	if err == nil {
		for _, e := range entries {
			name := e.Name()
			base := strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".hmm")
			if !referencedProfiles[base] {
				w.UnreferencedProfiles = append(w.UnreferencedProfiles, name)
				log.Printf("model package %s: profile %s is not referenced by any model", dir, name)
			}
		}
	} else if !os.IsNotExist(err) {
		return w, macerr.Wrap(macerr.PackageError, "CheckAncillary", "", err)
	}

	if !hasAny(dir, "README", "README.md", "README.rst") {
		w.MissingReadme = true
		log.Printf("model package %s: missing README", dir)
	}
	if !hasAny(dir, "LICENSE") {
		w.MissingLicense = true
		log.Printf("model package %s: missing LICENSE", dir)
	}
	return w, nil
}

func hasAny(dir string, names ...string) bool {
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); err == nil {
			return true
		}
	}
	return false
}

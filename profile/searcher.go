package profile

import (
	"context"
	"os/exec"
	"strconv"
	"text/template"

	"github.com/biogo/external"

	"github.com/gem-pasteur/macsylib/internal/macerr"
)

// hmmsearch mirrors blasr.BLASR's buildarg-tagged command struct: each field
// becomes a command-line token through the same external.Build templating,
// rather than a hand-rolled slice of strings.
type hmmsearch struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}hmmsearch{{end}}"`

	CPU    int     `buildarg:"{{if .}}--cpu{{split}}{{.}}{{end}}"`
	CutGA  bool    `buildarg:"{{if .}}--cut_ga{{end}}"`
	EValue float64 `buildarg:"{{if (ne . 0.0)}}-E{{split}}{{fval .}}{{end}}"`
	Output string  `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`

	Profile string `buildarg:"{{.}}"`
	DB      string `buildarg:"{{.}}"`
}

func fval(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func (h hmmsearch) buildCommand() (*exec.Cmd, error) {
	cl, err := external.Build(h, template.FuncMap{"fval": fval})
	if err != nil {
		return nil, err
	}
	return exec.Command(cl[0], cl[1:]...), nil
}

// HMMSearcher runs the real `hmmsearch` binary, satisfying Searcher. It
// never reads CutGA and eValue together: CutGA, when set, takes the
// profile's built-in GA threshold instead of the explicit e-value, the
// same precedence the facade gives them.
type HMMSearcher struct{}

// Search builds and runs an hmmsearch invocation, writing the raw HMMER3
// text report to a file alongside dbPath and returning its path. A
// cancelled ctx kills the child process.
func (HMMSearcher) Search(ctx context.Context, profilePath, dbPath string, cpus int, cutGA bool, eValue float64) (string, error) {
	reportPath := dbPath + ".hmmsearch.out"
	spec := hmmsearch{CPU: cpus, Output: reportPath, Profile: profilePath, DB: dbPath}
	if cutGA {
		spec.CutGA = true
	} else {
		spec.EValue = eValue
	}
	cmd, err := spec.buildCommand()
	if err != nil {
		return "", macerr.Wrap(macerr.ExternalSearchFailure, "HMMSearcher.Search", "", err)
	}

	built := exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...)
	if err := built.Run(); err != nil {
		if ctx.Err() != nil {
			return "", macerr.Wrap(macerr.ExternalSearchFailure, "HMMSearcher.Search", "", ctx.Err())
		}
		return "", macerr.Wrap(macerr.ExternalSearchFailure, "HMMSearcher.Search", "", err)
	}
	return reportPath, nil
}

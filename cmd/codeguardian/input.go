package codeguardian

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeguardian/codeguardian/internal/input"
	"github.com/codeguardian/codeguardian/internal/types"
)

// inputFlags selects exactly one input modality.
type inputFlags struct {
	code      string
	file      string
	sample    string
	rev       string
	language  string
	stdin     bool
	clipboard bool
}

// source is one artifact plus the label it is reported under.
type source struct {
	label    string
	artifact types.Artifact
}

func (in *inputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.code, "code", "", "code to scan")
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "file to scan; doublestar globs such as 'src/**/*.py' scan each match")
	cmd.Flags().BoolVar(&in.stdin, "stdin", false, "read code from standard input")
	cmd.Flags().BoolVar(&in.clipboard, "clipboard", false, "read code from the system clipboard")
	cmd.Flags().StringVar(&in.sample, "sample", "", "scan a built-in sample (javascript|python|java)")
	cmd.Flags().StringVar(&in.rev, "rev", "", "read --file as committed at this git revision")
	cmd.Flags().StringVar(&in.language, "language", "", "language hint (javascript|python|java|typescript|cpp|php|go|rust)")
}

func (in *inputFlags) count() int {
	n := 0
	for _, set := range []bool{in.code != "", in.file != "", in.sample != "", in.stdin, in.clipboard} {
		if set {
			n++
		}
	}
	return n
}

// load resolves the flags into artifacts. Only --file with a glob yields
// more than one.
func (in *inputFlags) load(ctx context.Context) ([]source, error) {
	switch n := in.count(); {
	case n == 0:
		return nil, errors.New("no input: use one of --code, --file, --stdin, --clipboard or --sample")
	case n > 1:
		return nil, errors.New("choose only one of --code, --file, --stdin, --clipboard or --sample")
	}
	if in.rev != "" && in.file == "" {
		return nil, errors.New("--rev requires --file")
	}

	if in.file != "" && in.rev == "" {
		paths, err := input.ExpandGlob(".", in.file)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no scannable files match %q", in.file)
		}
		out := make([]source, 0, len(paths))
		for _, p := range paths {
			acq := input.NewAcquirer()
			blob, err := input.FileBlob(p)
			if err != nil {
				return nil, err
			}
			if err := acq.AcceptFile(ctx, blob); err != nil {
				return nil, err
			}
			a, err := in.withLanguage(acq)
			if err != nil {
				return nil, err
			}
			out = append(out, source{label: p, artifact: a})
		}
		return out, nil
	}

	acq := input.NewAcquirer()
	label := ""
	switch {
	case in.code != "":
		acq.AcceptCode(in.code)
	case in.file != "":
		if err := acq.AcceptRevision(ctx, ".", in.rev, in.file); err != nil {
			return nil, err
		}
		label = in.file + "@" + in.rev
	case in.sample != "":
		if err := acq.LoadSample(strings.ToLower(in.sample)); err != nil {
			return nil, err
		}
		label = acq.Artifact().Filename
	case in.stdin:
		data, err := io.ReadAll(io.LimitReader(os.Stdin, input.MaxFileBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if err := acq.CheckBlob(input.BytesBlob("stdin", data)); err != nil {
			return nil, err
		}
		acq.AcceptCode(string(data))
	case in.clipboard:
		if err := acq.AcceptClipboard(); err != nil {
			return nil, err
		}
	}
	a, err := in.withLanguage(acq)
	if err != nil {
		return nil, err
	}
	return []source{{label: label, artifact: a}}, nil
}

// withLanguage applies --language, then the configured default when the
// input carried no language of its own.
func (in *inputFlags) withLanguage(acq *input.Acquirer) (types.Artifact, error) {
	lang := strings.ToLower(strings.TrimSpace(in.language))
	if lang == "" && acq.Artifact().Language == "" {
		lang = strings.ToLower(cfg.language)
	}
	if lang != "" {
		if err := acq.SetLanguage(types.Language(lang)); err != nil {
			return types.Artifact{}, err
		}
	}
	return acq.Artifact(), nil
}

// Package dedupe runs the whole pipeline: load the lockfile, find the
// hoistable packages, then report them or rewrite the file.
package dedupe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/joho/godotenv"

	"github.com/ArnaudBarre/bun-dedupe/pkg/analyzer"
	"github.com/ArnaudBarre/bun-dedupe/pkg/lockfile"
	"github.com/ArnaudBarre/bun-dedupe/pkg/logger"
	"github.com/ArnaudBarre/bun-dedupe/pkg/output"
)

// Options configures a run.
type Options struct {
	Dir      string // project directory
	Lockfile string // relative to Dir unless absolute
	Check    bool
	Diff     bool
	Format   string // text, json or sarif

	IgnorePackages []string
	ToolVersion    string

	Stdout io.Writer
}

// Outcome is what a run did.
type Outcome struct {
	Result   *analyzer.Result
	Written  bool
	ExitCode int
}

// Run deduplicates the lockfile described by opts. In check mode the file is
// never written and ExitCode is 1 when duplicates exist.
func Run(opts Options) (*Outcome, error) {
	started := time.Now()
	path := opts.Lockfile
	if path == "" {
		path = lockfile.DefaultFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.Dir, path)
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	lf, text, err := lockfile.Load(path)
	if err != nil {
		return nil, err
	}

	a := analyzer.NewHoistAnalyzer()
	a.IgnorePackages = opts.IgnorePackages
	result, err := a.Analyze(lf)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	logger.Debugf("Found %d hoistable packages and %d promotions", len(result.Hoisted), len(result.Promotions))

	outcome := &Outcome{Result: result}
	duplicates := len(result.Hoisted) > 0

	var rewritten []byte
	if duplicates && (!opts.Check || opts.Diff) {
		rewritten, err = lockfile.Rewrite(text, lf, result.Changes())
		if err != nil {
			return nil, fmt.Errorf("failed to rewrite %s: %w", path, err)
		}
	}

	if duplicates && !opts.Check {
		if err := writeAtomic(path, rewritten); err != nil {
			return nil, err
		}
		outcome.Written = true
		logger.Debugf("Wrote %s (%d -> %d bytes)", path, len(text), len(rewritten))
	}

	if err := report(stdout, opts, path, text, result, started); err != nil {
		return nil, err
	}
	if opts.Diff && duplicates {
		diff, err := output.Diff(filepath.Base(path), text, rewritten)
		if err != nil {
			return nil, fmt.Errorf("failed to diff %s: %w", path, err)
		}
		fmt.Fprint(stdout, diff)
	}

	if duplicates && opts.Check {
		outcome.ExitCode = 1
	}
	return outcome, nil
}

func report(w io.Writer, opts Options, path string, text []byte, result *analyzer.Result, started time.Time) error {
	switch opts.Format {
	case "", "text":
		output.PrintTextReport(w, opts.Check, result)
		if logger.IsVerbose() && len(result.Hoisted) > 0 {
			output.PrintDetails(os.Stderr, result)
		}
		return nil
	case "json":
		out, err := output.GenerateJSONReport(path, opts.Check, result)
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	case "sarif":
		out, err := output.GenerateSarifReport(result, path, text, opts.ToolVersion, started)
		if err != nil {
			return fmt.Errorf("failed to generate SARIF report: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

// writeAtomic replaces path with data, keeping its permissions. Readers see
// either the old or the new file, never a partial one.
func writeAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat lockfile: %w", err)
	}
	if err := renameio.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return nil
}

// DetectCI reports whether any of vars is set to a non-empty value, either
// in the environment or in envFile when one is given.
func DetectCI(vars []string, envFile string) (bool, error) {
	for _, v := range vars {
		if os.Getenv(v) != "" {
			return true, nil
		}
	}
	if envFile == "" {
		return false, nil
	}
	env, err := godotenv.Read(envFile)
	if err != nil {
		return false, fmt.Errorf("failed to read env file: %w", err)
	}
	for _, v := range vars {
		if env[v] != "" {
			return true, nil
		}
	}
	return false, nil
}

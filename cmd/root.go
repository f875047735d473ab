package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ArnaudBarre/bun-dedupe/pkg/config"
	"github.com/ArnaudBarre/bun-dedupe/pkg/dedupe"
	"github.com/ArnaudBarre/bun-dedupe/pkg/logger"
)

// Version is set during build using ldflags
var Version = "dev"

// errDuplicatesFound makes the process exit with status 1 without printing anything else.
var errDuplicatesFound = errors.New("duplicates found")

type rootOptions struct {
	dir        string
	configPath string
	lockfile   string
	envFile    string
	format     string
	check      bool
	diff       bool
	verbose    bool
}

// NewRootCmd builds the bun-dedupe command with its own flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bun-dedupe",
		Short: "Removes duplicated nested packages from bun.lock",
		Long: `bun-dedupe collapses nested copies of a package into an ancestor install that already
satisfies them, then removes the redundant entries from bun.lock without touching anything else.

With --check (or when the CI environment variable is set) it only reports the duplicates and
exits with status 1 if there are any.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(opts.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedupe(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.dir, "dir", "C", ".", "Project directory containing the lockfile")
	flags.StringVar(&opts.configPath, "config", "", "Path to a config file (default: "+config.FileName+" searched upwards)")
	flags.StringVar(&opts.lockfile, "lockfile", "", "Lockfile path relative to the project directory (default: bun.lock)")
	flags.StringVar(&opts.envFile, "env-file", "", "Dotenv file whose CI variables enable check mode")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: text, json or sarif")
	flags.BoolVar(&opts.check, "check", false, "Only report duplicates, exit with status 1 if any are found")
	flags.BoolVar(&opts.diff, "diff", false, "Print the lockfile changes as a unified diff")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func runDedupe(cmd *cobra.Command, opts *rootOptions) error {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadConfig(opts.configPath)
	} else {
		cfg, err = config.FindAndLoadConfig(opts.dir)
	}
	if err != nil {
		return err
	}

	// Flags win over the config file
	flags := cmd.Flags()
	if flags.Changed("lockfile") {
		cfg.Lockfile = opts.lockfile
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("env-file") {
		cfg.EnvFile = opts.envFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	check := opts.check || cfg.Check
	if !check {
		check, err = dedupe.DetectCI(cfg.CIVariables, cfg.EnvFile)
		if err != nil {
			return err
		}
	}
	if check {
		logger.Debugf("Checking %s", cfg.Lockfile)
	} else {
		logger.Debugf("Deduplicating %s", cfg.Lockfile)
	}

	outcome, err := dedupe.Run(dedupe.Options{
		Dir:            opts.dir,
		Lockfile:       cfg.Lockfile,
		Check:          check,
		Diff:           opts.diff,
		Format:         cfg.Format,
		IgnorePackages: cfg.IgnorePackages,
		ToolVersion:    Version,
		Stdout:         cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	if outcome.ExitCode != 0 {
		return errDuplicatesFound
	}
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return execute(NewRootCmd())
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errDuplicatesFound) {
			logger.Errorf("%v", err)
		}
		return 1
	}
	return 0
}

// pyorder reorders the declarations of Python modules into a canonical
// layout and normalizes docstring examples.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phobologic/pyorder/internal/config"
	"github.com/phobologic/pyorder/internal/discover"
	"github.com/phobologic/pyorder/internal/format"
	"github.com/phobologic/pyorder/internal/report"
)

var version = "dev"

// Exit codes.
const (
	exitClean    = 0
	exitDirty    = 1 // files changed or failed
	exitError    = 2 // bad flags, bad config
	exitCanceled = 130
)

// errDirty signals that the run finished but left work behind: files were
// reformatted (or would be, with --check) or could not be formatted.
var errDirty = errors.New("files changed or failed")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitClean
	case errors.Is(err, errDirty):
		return exitDirty
	case errors.Is(err, context.Canceled):
		return exitCanceled
	default:
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
}

type rootOptions struct {
	check      bool
	jobs       int
	configPath string
	include    []string
	exclude    []string
	formatters []string
	blankLines int
	noAnchor   bool
	reportPath string
	verbose    bool
	quiet      bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:   "pyorder [flags] [path ...]",
		Short: "Reorder Python declarations into a canonical layout",
		Long: `pyorder rewrites Python modules so that imports come first, then
independent assignments, classes (bases before subclasses), helper functions,
public functions and finally assignments that depend on them. Class bodies
get properties before instance methods. Section header comments mark the
boundaries. Docstring examples are normalized as well.

Paths may be files or directories; directories are searched recursively.
Without paths the current directory is used.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			switch {
			case opts.verbose:
				level = log.DebugLevel
			case opts.quiet:
				level = log.ErrorLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(stderr, level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, &opts, stdout, stderr)
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("pyorder {{.Version}}\n")

	flags := root.Flags()
	flags.BoolVar(&opts.check, "check", false, "report files that would change without writing them")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "files to format concurrently (0 = one per CPU)")
	flags.StringVar(&opts.configPath, "config", "", "read settings from this TOML file instead of pyorder.toml/pyproject.toml")
	flags.StringSliceVar(&opts.include, "include", nil, "regular expressions selecting files to format (replaces configured list)")
	flags.StringSliceVar(&opts.exclude, "exclude", nil, "gitignore-style patterns of files to skip (replaces configured list)")
	flags.StringSliceVar(&opts.formatters, "formatters", nil, "formatters to run, in order: order, docstring")
	flags.IntVar(&opts.blankLines, "blank-lines", 1, "blank lines between module-level declarations")
	flags.BoolVar(&opts.noAnchor, "no-anchor", false, "do not move assignments next to the helper or class that uses them")
	flags.StringVar(&opts.reportPath, "report", "", "write a TOON report to this file (- for stdout)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors and skip the summary")

	root.AddCommand(newInitCmd(stdout, stderr))
	return root
}

func runFormat(cmd *cobra.Command, args []string, opts *rootOptions, stdout, stderr io.Writer) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		logger.Debugf("Using config from %s", cfg.Source)
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	paths, err := discover.Expand(args)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	filter, err := discover.NewFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return err
	}
	formatters, err := format.New(cfg)
	if err != nil {
		return err
	}

	runner := &format.Runner{
		Formatters: formatters,
		Filter:     filter,
		Jobs:       cfg.Jobs,
		Check:      opts.check,
		Logger:     logger,
	}
	summary := runner.Run(ctx, paths)
	if err := ctx.Err(); err != nil {
		return err
	}

	if !opts.quiet {
		printSummary(stderr, summary, opts.check)
	}
	if opts.reportPath != "" {
		if err := writeReport(opts.reportPath, summary, opts.check, stdout); err != nil {
			return err
		}
	}

	if summary.Changed() > 0 || summary.Failed() > 0 {
		return errDirty
	}
	return nil
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		cfg, err = config.Load(wd)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("include") {
		cfg.Include = opts.include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = opts.exclude
	}
	if flags.Changed("formatters") {
		cfg.Formatters = opts.formatters
	}
	if flags.Changed("blank-lines") {
		cfg.BlankLines = opts.blankLines
	}
	if flags.Changed("jobs") {
		cfg.Jobs = opts.jobs
	}
	if opts.noAnchor {
		cfg.AnchorAssignments = false
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}
	return cfg, nil
}

func writeReport(path string, s format.Summary, check bool, stdout io.Writer) error {
	out := report.Encode(s, check) + "\n"
	if path == "-" {
		_, err := io.WriteString(stdout, out)
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

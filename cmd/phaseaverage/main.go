package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/phaseavg/internal/average"
	"github.com/san-kum/phaseavg/internal/caseio"
	"github.com/san-kum/phaseavg/internal/config"
	"github.com/san-kum/phaseavg/internal/field"
	"github.com/san-kum/phaseavg/internal/storage"
	"github.com/san-kum/phaseavg/internal/viz"
)

// options holds the flags shared by every command, resolved against the
// environment settings before a command runs.
type options struct {
	caseDir    string
	region     string
	times      string
	latestTime bool
	noZero     bool
	tolerance  float64
	verbose    bool
	noHistory  bool

	settings *config.Settings
	log      *slog.Logger
}

func main() {
	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "phaseAverage <fieldName> <fieldType>",
		Short: "phase-locked temporal average of a field",
		Long: "Averages a field over the time directories that fall exactly on\n" +
			"phaseStartTime + k*cycleTime, as configured in constant/phaseAverageDict,\n" +
			"and writes <fieldName>_phase_locked_<phaseStartTime> into the last time.\n\n" +
			"fieldType is one of: " + strings.Join(field.KindNames(), ", ") + "\n\n" +
			"A field named like a subcommand (schedule, inspect, history, init-dict, run)\n" +
			"is averaged with 'phaseAverage run <fieldName> <fieldType>'.",
		Args: fieldArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd, stderr)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAverage(cmd, opts, args[0], args[1])
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError("invalid flags", err)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.caseDir, "case", ".", "case directory (env PHASEAVG_CASE)")
	pf.StringVar(&opts.region, "region", caseio.DefaultRegion, "mesh region")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	addRunFlags(rootCmd, opts)

	rootCmd.AddCommand(
		newRunCommand(opts),
		newScheduleCommand(opts),
		newInspectCommand(opts),
		newHistoryCommand(opts),
		newInitDictCommand(opts),
	)
	return rootCmd
}

// fieldArgs accepts exactly <fieldName> <fieldType>.
func fieldArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return usageError("expected <fieldName> <fieldType>", fmt.Errorf("got %d arguments", len(args)))
	}
	return nil
}

func addRunFlags(cmd *cobra.Command, opts *options) {
	addTimeFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record the run (env PHASEAVG_HISTORY)")
}

func addTimeFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.times, "time", "", "time ranges, e.g. '0.5:1.5,2'")
	cmd.Flags().BoolVar(&opts.latestTime, "latestTime", false, "select only the latest time")
	cmd.Flags().BoolVar(&opts.noZero, "noZero", false, "exclude time 0")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "override the dictionary matching tolerance")
}

// resolve merges environment settings with explicitly set flags and installs
// the logger.
func (o *options) resolve(cmd *cobra.Command, stderr io.Writer) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return usageError("invalid environment", err)
	}
	o.settings = settings

	if !cmd.Flags().Changed("case") {
		o.caseDir = settings.CaseDir
	}
	if !settings.History {
		o.noHistory = true
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(settings.LogLevel)); err != nil {
		return usageError("invalid PHASEAVG_LOG_LEVEL", err)
	}
	if o.verbose {
		level = slog.LevelDebug
	}
	o.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func (o *options) openCase() (*caseio.Case, error) {
	c, err := caseio.Open(o.caseDir,
		caseio.WithRegion(o.region),
		caseio.WithCompressionLevel(o.settings.CompressionLevel),
		caseio.WithTimePrecision(o.settings.TimePrecision),
	)
	if err != nil {
		return nil, failure("cannot open case", err)
	}
	return c, nil
}

func (o *options) selection() caseio.Selection {
	return caseio.Selection{Ranges: o.times, LatestTime: o.latestTime, NoZero: o.noZero}
}

// loadDict reads the schedule dictionary, applying --tolerance when set.
func (o *options) loadDict(cmd *cobra.Command) (*config.Dict, error) {
	path := config.DictPath(o.caseDir)
	o.log.Debug("reading dictionary", "path", path)
	dict, err := config.Load(path)
	if err != nil {
		return nil, failure("invalid schedule", err)
	}
	if cmd.Flags().Changed("tolerance") {
		dict.Tolerance = o.tolerance
		if err := dict.Schedule().Validate(); err != nil {
			return nil, usageError("invalid --tolerance", err)
		}
	}
	return dict, nil
}

func runAverage(cmd *cobra.Command, opts *options, name, typeName string) error {
	kind, err := field.ParseKind(typeName)
	if err != nil {
		return usageError("unknown field type", err)
	}

	c, err := opts.openCase()
	if err != nil {
		return err
	}
	dict, err := opts.loadDict(cmd)
	if err != nil {
		return err
	}
	times, err := c.Times(opts.selection())
	if err != nil {
		return failure("no times selected", err)
	}

	req := average.Request{Field: name, Kind: kind, Schedule: dict.Schedule()}
	res, err := average.Run(c, times, req, average.WithLogger(opts.log))
	if err != nil {
		return failure("phase average failed", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), viz.RenderReport(res))

	if !opts.noHistory {
		st := storage.ForCase(c.Root())
		meta, samples := storage.FromResult(c.Root(), c.Region(), res)
		runID, err := st.Save(meta, samples)
		if err != nil {
			opts.log.Warn("run not recorded", "err", err)
		} else {
			opts.log.Debug("run recorded", "id", runID, "dir", st.Dir())
		}
	}
	return nil
}

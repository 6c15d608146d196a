package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/phaseavg/internal/caseio"
	"github.com/san-kum/phaseavg/internal/config"
	"github.com/san-kum/phaseavg/internal/field"
	"github.com/san-kum/phaseavg/internal/viz"
)

func newRunCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <fieldName> <fieldType>",
		Short: "phase-locked temporal average of a field",
		Args:  fieldArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAverage(cmd, opts, args[0], args[1])
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

func newScheduleCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule [fieldName]",
		Short: "list the phase-locked instants present in the case",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			instants := dict.Schedule().Preview(times)
			out := cmd.OutOrStdout()
			if len(instants) == 0 {
				fmt.Fprintln(out, "no time matches the schedule")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			if len(args) == 0 {
				fmt.Fprintln(w, "K\tTIME")
			} else {
				fmt.Fprintf(w, "K\tTIME\t%s\n", args[0])
			}
			for k, t := range instants {
				row := fmt.Sprintf("%d\t%s", k, c.TimeName(t))
				if len(args) == 1 {
					row += "\t" + presence(c.Header(args[0], t))
				}
				fmt.Fprintln(w, row)
			}
			return w.Flush()
		},
	}
	addTimeFlags(cmd, opts)
	return cmd
}

// presence describes the outcome of a header read.
func presence(hd caseio.FileHeader, err error) string {
	switch {
	case err == nil:
		return hd.FieldKind().ClassName()
	case errors.Is(err, field.ErrNotFound):
		return "missing"
	}
	return "unreadable"
}

func newInspectCommand(opts *options) *cobra.Command {
	var plot bool

	cmd := &cobra.Command{
		Use:   "inspect <fieldName> <time>",
		Short: "show the kind and magnitude statistics of a stored field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			t, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return usageError("invalid time", err)
			}

			c, err := opts.openCase()
			if err != nil {
				return err
			}
			// Listing records the on-disk spelling of every time directory.
			if _, err := c.Times(caseio.Selection{}); err != nil {
				return failure("no times", err)
			}

			hd, err := c.Header(name, t)
			if err != nil {
				return failure("cannot read field", err)
			}
			raw, err := c.Read(name, t, hd.FieldKind())
			if err != nil {
				return failure("cannot read field", err)
			}
			sum := field.Summarize(raw)

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "field\t%s\n", name)
			fmt.Fprintf(w, "time\t%s\n", c.TimeName(t))
			fmt.Fprintf(w, "class\t%s\n", raw.Kind.ClassName())
			fmt.Fprintf(w, "entities\t%d\n", raw.Count)
			fmt.Fprintf(w, "compressed\t%d bytes\n", hd.Payload)
			fmt.Fprintf(w, "|x| min\t%.6g\n", sum.Min)
			fmt.Fprintf(w, "|x| max\t%.6g\n", sum.Max)
			fmt.Fprintf(w, "|x| mean\t%.6g\n", sum.Mean)
			if err := w.Flush(); err != nil {
				return err
			}

			if plot {
				if graph := viz.PlotMagnitudes(field.Magnitudes(raw), fmt.Sprintf("|%s| at %s", name, c.TimeName(t))); graph != "" {
					fmt.Fprintln(out)
					fmt.Fprintln(out, graph)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plot, "plot", false, "plot per-entity magnitudes")
	return cmd
}

func newInitDictCommand(opts *options) *cobra.Command {
	var force bool
	dict := config.DefaultDict()

	cmd := &cobra.Command{
		Use:   "init-dict",
		Short: "write constant/phaseAverageDict",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dict.Schedule().Validate(); err != nil {
				return usageError("invalid schedule", err)
			}

			path := config.DictPath(opts.caseDir)
			if _, err := os.Stat(path); err == nil && !force {
				return failure("dictionary exists", fmt.Errorf("%s (use --force to overwrite)", path))
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return failure("cannot check dictionary", err)
			}

			if err := config.Save(path, dict); err != nil {
				return failure("cannot write dictionary", err)
			}
			opts.log.Info("wrote dictionary", "path", path)
			return nil
		},
	}
	cmd.Flags().Float64Var(&dict.PhaseStartTime, "phase-start", dict.PhaseStartTime, "first phase-locked instant")
	cmd.Flags().Float64Var(&dict.CycleTime, "cycle", dict.CycleTime, "cycle length")
	cmd.Flags().Float64Var(&dict.Tolerance, "tolerance", dict.Tolerance, "matching tolerance, 0 for exact")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing dictionary")
	return cmd
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/phaseavg/internal/caseio"
	"github.com/san-kum/phaseavg/internal/storage"
	"github.com/san-kum/phaseavg/internal/viz"
)

func newHistoryCommand(opts *options) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		return listRuns(cmd, storage.ForCase(opts.caseDir))
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  list,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "list recorded runs",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "show <runID>",
			Short: "show one recorded run",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return showRun(cmd, storage.ForCase(opts.caseDir), args[0])
			},
		},
		&cobra.Command{
			Use:   "browse",
			Short: "browse recorded runs interactively",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st := storage.ForCase(opts.caseDir)
				runs, err := st.List()
				if err != nil {
					return failure("cannot list runs", err)
				}
				return viz.RunHistoryBrowser(runs, st.LoadSamples)
			},
		},
	)
	return cmd
}

func listRuns(cmd *cobra.Command, st *storage.Store) error {
	runs, err := st.List()
	if err != nil {
		return failure("cannot list runs", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOUTPUT\tKIND\tAVERAGED\tWRITTEN\tTIME")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.Output,
			run.Kind,
			run.Count,
			run.WrittenAt,
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, st *storage.Store, runID string) error {
	meta, err := st.Load(runID)
	if err != nil {
		return failure("cannot load run", err)
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return failure("cannot load run", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "output: %s (%s)\n", meta.Output, meta.Kind)
	fmt.Fprintf(out, "schedule: %s + k*%s\n",
		caseio.FormatTime(meta.PhaseStart, caseio.DefaultTimePrecision),
		caseio.FormatTime(meta.CycleTime, caseio.DefaultTimePrecision))
	fmt.Fprintf(out, "averaged: %d of %d scheduled, %d timestamps\n\n", meta.Count, len(samples), meta.Visited)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INSTANT\tTIME\tSTATUS\tMEAN |X|")
	for _, s := range samples {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.6g\n",
			caseio.FormatTime(s.Instant, caseio.DefaultTimePrecision),
			caseio.FormatTime(s.Time, caseio.DefaultTimePrecision),
			s.Status,
			s.MeanMag,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if graph := viz.PlotSamples(samples); graph != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, graph)
	}
	return nil
}

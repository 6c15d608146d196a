// Package average computes phase-locked averages of stored fields.
//
// A run sweeps an ascending list of timestamps once. At every timestamp the
// store's current-time cursor is moved; when the timestamp equals the
// pending instant of the [schedule.Schedule], the snapshot is read and added
// to a running sum shaped like the base field. The sum is divided by the
// number of snapshots added and written once, at the last visited time:
//
//	res, err := average.Run(store, times, average.Request{
//	    Field:    "U",
//	    Kind:     field.KindVector,
//	    Schedule: schedule.Schedule{PhaseStart: 0.5, CycleLength: 1},
//	})
//
// A snapshot missing at a scheduled instant is not counted and not retried;
// the schedule still moves on to the next instant. A run that matches
// nothing writes an all-zero field.
//
// # Run states
//
// A [Runner] moves through Init, ValidatingBase, Accumulating, Finalizing
// and Written. Any failure ends in Failed with nothing written.
package average

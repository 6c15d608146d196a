// Package caseio reads and writes field snapshots stored in a case directory.
//
// A case is laid out by time:
//
//	<case>/constant/              static inputs (phaseAverageDict, polyMesh)
//	<case>/<time>/[<region>/]U    field U at <time>
//	<case>/<time>/polyMesh/       mesh written by a topology change
//
// Time directories are recognised by their numeric names. Field files carry a
// small binary header followed by a zstd compressed payload of little-endian
// float64 components; see [Encode].
//
// A [Case] also tracks a current-time cursor. Readers that follow the cursor
// observe mesh changes through [Case.MeshInstance].
package caseio

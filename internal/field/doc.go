// Package field defines the value kinds a simulation field can carry and the
// typed, per-entity containers used to accumulate them.
//
// Five value kinds are supported, each with its own arithmetic:
//
//   - [Scalar]: one component
//   - [Vector]: three components
//   - [Tensor]: nine components, row major
//   - [SymmTensor]: six components (xx, xy, xz, yy, yz, zz)
//   - [SphTensor]: one component, the isotropic part
//
// Every kind implements [Value], so averaging code is written once against
// [Field] and instantiated per kind:
//
//	f, err := field.FromRaw[field.Vector]("U", raw)
//	if err != nil {
//	    return err
//	}
//	f.Divide(float64(n))
//
// Storage deals in [Raw], the flat, untyped form of a field.
package field

package field

// Kind is the algebraic type of a field's per-entity value.
type Kind uint8

const (
	KindScalar Kind = iota
	KindVector
	KindTensor
	KindSymmTensor
	KindSphTensor
)

var kinds = []struct {
	name       string
	class      string
	components int
}{
	KindScalar:     {"scalar", "volScalarField", 1},
	KindVector:     {"vector", "volVectorField", 3},
	KindTensor:     {"tensor", "volTensorField", 9},
	KindSymmTensor: {"symmTensor", "volSymmTensorField", 6},
	KindSphTensor:  {"sphTensor", "volSphericalTensorField", 1},
}

// ParseKind maps a field type word to its Kind. Matching is case sensitive.
func ParseKind(s string) (Kind, error) {
	for k, info := range kinds {
		if info.name == s {
			return Kind(k), nil
		}
	}
	return 0, &KindError{Input: s}
}

// KindNames lists the accepted field type words in declaration order.
func KindNames() []string {
	names := make([]string, len(kinds))
	for i, info := range kinds {
		names[i] = info.name
	}
	return names
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return int(k) < len(kinds)
}

func (k Kind) String() string {
	if !k.Valid() {
		return "invalid"
	}
	return kinds[k].name
}

// ClassName is the class name recorded in stored field headers.
func (k Kind) ClassName() string {
	if !k.Valid() {
		return ""
	}
	return kinds[k].class
}

// Components is the number of float64 components per entity.
func (k Kind) Components() int {
	if !k.Valid() {
		return 0
	}
	return kinds[k].components
}

package field

import "fmt"

// Raw is the flat, untyped form of a field as it is stored on disk:
// Count entities of Kind, components laid out entity after entity.
type Raw struct {
	Kind  Kind
	Count int
	Data  []float64
}

// NewRaw allocates a zero-valued raw field.
func NewRaw(kind Kind, count int) *Raw {
	return &Raw{Kind: kind, Count: count, Data: make([]float64, count*kind.Components())}
}

// Validate checks that the data length matches the kind and entity count.
func (r *Raw) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: invalid kind %d", ErrMalformed, r.Kind)
	}
	if r.Count < 0 {
		return fmt.Errorf("%w: negative entity count %d", ErrMalformed, r.Count)
	}
	if want := r.Count * r.Kind.Components(); len(r.Data) != want {
		return fmt.Errorf("%w: %s with %d entities needs %d components, got %d",
			ErrMalformed, r.Kind, r.Count, want, len(r.Data))
	}
	return nil
}

// Equal reports whether two raw fields have identical shape and components.
func (r *Raw) Equal(o *Raw) bool {
	if r.Kind != o.Kind || r.Count != o.Count || len(r.Data) != len(o.Data) {
		return false
	}
	for i := range r.Data {
		if r.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

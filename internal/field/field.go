package field

import "fmt"

// Field is a named sequence of per-entity values of one kind.
type Field[T Value[T]] struct {
	Name   string
	Values []T
}

// NewField returns a zero-valued field with n entities.
func NewField[T Value[T]](name string, n int) *Field[T] {
	return &Field[T]{Name: name, Values: make([]T, n)}
}

// KindOf returns the value kind carried by T.
func KindOf[T Value[T]]() Kind {
	var zero T
	return zero.Kind()
}

// FromRaw decodes raw into a typed field. The raw kind must match T.
func FromRaw[T Value[T]](name string, raw *Raw) (*Field[T], error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if want := KindOf[T](); raw.Kind != want {
		return nil, fmt.Errorf("%w: %s is %s, want %s", ErrKindMismatch, name, raw.Kind, want)
	}
	var zero T
	nc := raw.Kind.Components()
	f := NewField[T](name, raw.Count)
	for i := range f.Values {
		f.Values[i] = zero.Unflatten(raw.Data[i*nc : (i+1)*nc])
	}
	return f, nil
}

func (f *Field[T]) Len() int {
	return len(f.Values)
}

// Zero resets every value in place while keeping the entity count.
func (f *Field[T]) Zero() {
	var zero T
	for i := range f.Values {
		f.Values[i] = zero
	}
}

// AddField adds o to f entity by entity.
func (f *Field[T]) AddField(o *Field[T]) error {
	if len(o.Values) != len(f.Values) {
		return fmt.Errorf("%w: %s has %d entities, %s has %d",
			ErrEntityMismatch, f.Name, len(f.Values), o.Name, len(o.Values))
	}
	for i := range f.Values {
		f.Values[i] = f.Values[i].Add(o.Values[i])
	}
	return nil
}

func (f *Field[T]) Divide(d float64) {
	for i := range f.Values {
		f.Values[i] = f.Values[i].Divide(d)
	}
}

// Raw flattens the field into its storage form.
func (f *Field[T]) Raw() *Raw {
	raw := NewRaw(KindOf[T](), len(f.Values))
	nc := raw.Kind.Components()
	for i, v := range f.Values {
		v.Flatten(raw.Data[i*nc : (i+1)*nc])
	}
	return raw
}

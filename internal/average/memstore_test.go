package average_test

import (
	"fmt"
	"strconv"

	"github.com/san-kum/phaseavg/internal/field"
)

// memStore is an in-memory Store that records every call.
type memStore struct {
	fields  map[string]*field.Raw
	cursor  []float64
	reads   []string
	writes  []string
	written map[string]*field.Raw
	failAt  map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		fields:  make(map[string]*field.Raw),
		written: make(map[string]*field.Raw),
		failAt:  make(map[string]error),
	}
}

func key(name string, t float64) string {
	return name + "@" + strconv.FormatFloat(t, 'g', -1, 64)
}

func (m *memStore) put(name string, t float64, raw *field.Raw) {
	m.fields[key(name, t)] = raw
}

func (m *memStore) SetTime(t float64) {
	m.cursor = append(m.cursor, t)
}

func (m *memStore) TimeName(t float64) string {
	return strconv.FormatFloat(t, 'g', 6, 64)
}

func (m *memStore) Read(name string, t float64, kind field.Kind) (*field.Raw, error) {
	k := key(name, t)
	m.reads = append(m.reads, k)
	if err, ok := m.failAt[k]; ok {
		return nil, err
	}
	raw, ok := m.fields[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", field.ErrNotFound, k)
	}
	if raw.Kind != kind {
		return nil, fmt.Errorf("%w: %s is %s", field.ErrKindMismatch, k, raw.Kind)
	}
	c := *raw
	c.Data = append([]float64(nil), raw.Data...)
	return &c, nil
}

func (m *memStore) Write(name string, t float64, raw *field.Raw) error {
	k := key(name, t)
	m.writes = append(m.writes, k)
	m.written[k] = raw
	return nil
}

func scalars(vals ...float64) *field.Raw {
	return &field.Raw{Kind: field.KindScalar, Count: len(vals), Data: vals}
}

func vectors(vals ...field.Vector) *field.Raw {
	f := &field.Field[field.Vector]{Values: vals}
	return f.Raw()
}

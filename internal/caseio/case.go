package caseio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/san-kum/phaseavg/internal/field"
)

const (
	ConstantDir = "constant"
	MeshDir     = "polyMesh"

	// DefaultRegion is stored without a region sub-directory.
	DefaultRegion = "region0"

	DefaultTimePrecision = 6
)

// Case is a case directory opened for reading and writing field snapshots.
// A Case is not safe for concurrent use.
type Case struct {
	root      string
	region    string
	level     int
	precision int

	dirNames map[float64]string
	pool     *bufferPool

	now          float64
	meshInstance string
}

type Option func(*Case)

// WithRegion selects a mesh region. The default region is stored directly
// in the time directory.
func WithRegion(region string) Option {
	return func(c *Case) {
		if region == DefaultRegion {
			region = ""
		}
		c.region = region
	}
}

// WithCompressionLevel sets the zstd level used by Write.
func WithCompressionLevel(level int) Option {
	return func(c *Case) { c.level = level }
}

// WithTimePrecision sets the significant digits of TimeName.
func WithTimePrecision(digits int) Option {
	return func(c *Case) {
		if digits > 0 {
			c.precision = digits
		}
	}
}

// Open opens the case rooted at root.
func Open(root string, opts ...Option) (*Case, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("caseio: open case: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("caseio: open case: %s is not a directory", root)
	}

	c := &Case{
		root:         root,
		level:        DefaultCompressionLevel,
		precision:    DefaultTimePrecision,
		dirNames:     make(map[float64]string),
		pool:         newBufferPool(),
		meshInstance: ConstantDir,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Case) Root() string {
	return c.root
}

func (c *Case) Region() string {
	if c.region == "" {
		return DefaultRegion
	}
	return c.region
}

// TimeName renders t with the case's canonical numeric-to-text rule: the
// shortest %g form with the configured significant digits.
func (c *Case) TimeName(t float64) string {
	return FormatTime(t, c.precision)
}

// FormatTime is the numeric-to-text rule behind TimeName.
func FormatTime(t float64, precision int) string {
	return strconv.FormatFloat(t, 'g', precision, 64)
}

// Times lists the time directories of the case in ascending order, filtered
// by sel. The constant directory and non-numeric names are ignored.
func (c *Case) Times(sel Selection) ([]float64, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("caseio: list times: %w", err)
	}

	var all []float64
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ConstantDir {
			continue
		}
		t, err := strconv.ParseFloat(entry.Name(), 64)
		if err != nil {
			continue
		}
		if prev, ok := c.dirNames[t]; ok && prev != entry.Name() {
			return nil, fmt.Errorf("caseio: directories %q and %q name the same time", prev, entry.Name())
		}
		c.dirNames[t] = entry.Name()
		all = append(all, t)
	}
	sort.Float64s(all)

	times, err := sel.Apply(all)
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, ErrNoTimes
	}
	return times, nil
}

// SetTime moves the current-time cursor to t and refreshes the mesh
// instance: a time directory holding a polyMesh becomes the new instance.
func (c *Case) SetTime(t float64) {
	c.now = t
	if info, err := os.Stat(filepath.Join(c.dir(t), MeshDir)); err == nil && info.IsDir() {
		c.meshInstance = c.timeDir(t)
	}
}

// Time returns the current-time cursor.
func (c *Case) Time() float64 {
	return c.now
}

// MeshInstance names the directory the mesh at the cursor was read from.
func (c *Case) MeshInstance() string {
	return c.meshInstance
}

// Header reads only the header of field name at time t.
func (c *Case) Header(name string, t float64) (FileHeader, error) {
	f, err := os.Open(c.FieldPath(name, t))
	if err != nil {
		return FileHeader{}, c.openErr(name, t, err)
	}
	defer f.Close()
	return ReadHeader(f)
}

// Read loads field name at time t, which must be stored as kind.
func (c *Case) Read(name string, t float64, kind field.Kind) (*field.Raw, error) {
	data, err := os.ReadFile(c.FieldPath(name, t))
	if err != nil {
		return nil, c.openErr(name, t, err)
	}

	raw, err := Decode(data, c.pool)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", name, c.timeDir(t), err)
	}
	if raw.Kind != kind {
		return nil, &KindMismatchError{Name: name, Time: c.timeDir(t), Stored: raw.Kind, Requested: kind}
	}
	return raw, nil
}

// Write stores raw as field name at time t, creating the time directory if
// needed. The file is replaced atomically.
func (c *Case) Write(name string, t float64, raw *field.Raw) error {
	data, err := Encode(raw, c.level)
	if err != nil {
		return err
	}

	dir := c.dir(t)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("caseio: create time directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp*")
	if err != nil {
		return fmt.Errorf("caseio: write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("caseio: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("caseio: write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("caseio: write %s: %w", name, err)
	}

	c.dirNames[t] = c.timeDir(t)
	return nil
}

// FieldPath is the file holding field name at time t.
func (c *Case) FieldPath(name string, t float64) string {
	return filepath.Join(c.dir(t), name)
}

func (c *Case) dir(t float64) string {
	return filepath.Join(c.root, c.timeDir(t), c.region)
}

// timeDir prefers the directory name found on disk, so "0.50" keeps its
// spelling even though TimeName would render it "0.5".
func (c *Case) timeDir(t float64) string {
	if name, ok := c.dirNames[t]; ok {
		return name
	}
	return c.TimeName(t)
}

func (c *Case) openErr(name string, t float64, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s at %s", field.ErrNotFound, name, c.timeDir(t))
	}
	return fmt.Errorf("caseio: open %s at %s: %w", name, c.timeDir(t), err)
}

package config

import (
	_ "embed"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/phaseavg/internal/schedule"
)

const (
	DictName = "phaseAverageDict"
	DictDir  = "constant"

	DefaultPhaseStartTime = 0.0
	DefaultCycleTime      = 1.0
)

//go:embed schema.cue
var schemaSrc string

// Dict is the schedule dictionary read from <case>/constant/phaseAverageDict.
type Dict struct {
	PhaseStartTime float64 `yaml:"phaseStartTime"`
	CycleTime      float64 `yaml:"cycleTime"`
	Tolerance      float64 `yaml:"tolerance,omitempty"`
}

func DefaultDict() *Dict {
	return &Dict{
		PhaseStartTime: DefaultPhaseStartTime,
		CycleTime:      DefaultCycleTime,
	}
}

// DictPath is the fixed location of the dictionary inside a case.
func DictPath(caseDir string) string {
	return filepath.Join(caseDir, DictDir, DictName)
}

// Load reads and validates a dictionary. Every failure is an *Error.
func Load(path string) (*Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "cannot open dictionary", Err: err}
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Path: path, Reason: "not a valid dictionary", Err: err}
	}
	if doc == nil {
		return nil, &Error{Path: path, Reason: "dictionary is empty"}
	}
	if err := validate(doc); err != nil {
		return nil, &Error{Path: path, Reason: "schedule parameters", Err: err}
	}

	d := DefaultDict()
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, &Error{Path: path, Reason: "not a valid dictionary", Err: err}
	}
	if err := d.Schedule().Validate(); err != nil {
		return nil, &Error{Path: path, Reason: "schedule parameters", Err: err}
	}
	return d, nil
}

func Save(path string, d *Dict) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (d *Dict) Schedule() schedule.Schedule {
	return schedule.Schedule{
		PhaseStart:  d.PhaseStartTime,
		CycleLength: d.CycleTime,
		Tolerance:   d.Tolerance,
	}
}

func validate(doc map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return err
	}
	return schema.Unify(ctx.Encode(doc)).Validate(cue.Concrete(true))
}

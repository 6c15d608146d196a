package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/phaseavg/internal/average"
	"github.com/san-kum/phaseavg/internal/field"
)

const (
	// DefaultDir is the history directory relative to the case root.
	DefaultDir = "postProcessing/phaseAverage"

	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// ForCase returns the history store kept inside a case directory.
func ForCase(caseDir string) *Store {
	return New(filepath.Join(caseDir, DefaultDir))
}

func (s *Store) Dir() string {
	return s.baseDir
}

type RunMetadata struct {
	ID         string        `json:"id"`
	Case       string        `json:"case"`
	Region     string        `json:"region"`
	Field      string        `json:"field"`
	Kind       string        `json:"kind"`
	Output     string        `json:"output"`
	PhaseStart float64       `json:"phaseStartTime"`
	CycleTime  float64       `json:"cycleTime"`
	Tolerance  float64       `json:"tolerance,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	WrittenAt  string        `json:"writtenAt"`
	Visited    int           `json:"visited"`
	Count      int           `json:"count"`
	Summary    field.Summary `json:"summary"`
}

// Sample is one scheduled instant of a run.
type Sample struct {
	Time    float64
	Instant float64
	Status  string
	MeanMag float64
}

// FromResult converts a finished run into its history record.
func FromResult(caseDir, region string, res *average.Result) (RunMetadata, []Sample) {
	meta := RunMetadata{
		Case:       caseDir,
		Region:     region,
		Field:      res.Field,
		Kind:       res.Kind.String(),
		Output:     res.Name,
		PhaseStart: res.Schedule.PhaseStart,
		CycleTime:  res.Schedule.CycleLength,
		Tolerance:  res.Schedule.Tolerance,
		Timestamp:  time.Now(),
		WrittenAt:  res.TimeName,
		Visited:    res.Visited,
		Count:      res.Count,
		Summary:    res.Summary,
	}
	samples := make([]Sample, len(res.Samples))
	for i, v := range res.Samples {
		samples[i] = Sample{Time: v.Time, Instant: v.Instant, Status: v.Status.String(), MeanMag: v.MeanMag}
	}
	return meta, samples
}

// Save stores a run under a fresh id and returns the id. meta.ID is
// overwritten.
func (s *Store) Save(meta RunMetadata, samples []Sample) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("storage: new run id: %w", err)
	}
	runID := id.String()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"time", "instant", "status", "meanMag"}); err != nil {
		return "", err
	}
	for _, smp := range samples {
		row := []string{
			formatFloat(smp.Time),
			formatFloat(smp.Instant),
			smp.Status,
			formatFloat(smp.MeanMag),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, notFound(runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: run %s samples: %w", runID, err)
	}

	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		var smp Sample
		var perr error
		parse := func(s string) float64 {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil && perr == nil {
				perr = err
			}
			return v
		}
		smp.Time = parse(record[0])
		smp.Instant = parse(record[1])
		smp.Status = record[2]
		smp.MeanMag = parse(record[3])
		if perr != nil {
			return nil, fmt.Errorf("storage: run %s samples line %d: %w", runID, i+2, perr)
		}
		samples = append(samples, smp)
	}

	return samples, nil
}

func notFound(runID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return fmt.Errorf("storage: run %s: %w", runID, err)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/tovsim/internal/sequence"
	"github.com/san-kum/tovsim/internal/tov"
)

const (
	KindModel    = "model"
	KindSequence = "sequence"

	metadataFile = "metadata.json"
	profileFile  = "profile.csv"
	sequenceFile = "sequence.csv"

	profileColumns  = 6
	sequenceColumns = 9
)

var ErrMalformedRun = errors.New("storage: malformed run data")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SolverSettings struct {
	RInit    float64 `json:"r_init"`
	RMax     float64 `json:"r_max"`
	RelTol   float64 `json:"rtol"`
	AbsTol   float64 `json:"atol"`
	MaxSteps int     `json:"max_steps"`
}

func settings(cfg tov.Config) SolverSettings {
	return SolverSettings{RInit: cfg.RInit, RMax: cfg.RMax, RelTol: cfg.RelTol, AbsTol: cfg.AbsTol, MaxSteps: cfg.MaxSteps}
}

// RunMetadata describes one stored run. Model fields are set for single
// stars, sequence fields for sweeps.
type RunMetadata struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	EOS       string         `json:"eos"`
	Timestamp time.Time      `json:"timestamp"`
	Solver    SolverSettings `json:"solver"`

	CentralPressure float64 `json:"central_pressure,omitempty"`
	Mass            float64 `json:"mass,omitempty"`
	Radius          float64 `json:"radius,omitempty"`
	BaryonMass      float64 `json:"baryon_mass,omitempty"`
	Degenerate      bool    `json:"degenerate,omitempty"`
	Steps           int     `json:"steps,omitempty"`

	Models        int     `json:"models,omitempty"`
	Failures      int     `json:"failures,omitempty"`
	MaxMass       float64 `json:"max_mass,omitempty"`
	MaxMassRadius float64 `json:"max_mass_radius,omitempty"`
	TurningPoints int     `json:"turning_points,omitempty"`
	AllCausal     bool    `json:"all_causal,omitempty"`
}

func (s *Store) newRun(kind, eosName string, cfg tov.Config) (RunMetadata, string, error) {
	id := fmt.Sprintf("%s_%s", kind, uuid.NewString())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return RunMetadata{}, "", err
	}
	meta := RunMetadata{
		ID:        id,
		Kind:      kind,
		EOS:       eosName,
		Timestamp: time.Now(),
		Solver:    settings(cfg),
	}
	return meta, dir, nil
}

func writeMetadata(dir string, meta RunMetadata) error {
	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// SaveModel stores a single star and its radial profile.
func (s *Store) SaveModel(m *tov.Model, cfg tov.Config) (string, error) {
	meta, dir, err := s.newRun(KindModel, m.EOS, cfg)
	if err != nil {
		return "", err
	}
	meta.CentralPressure = m.CentralPressure
	meta.Mass = m.Mass
	meta.Radius = m.Radius
	meta.BaryonMass = m.BaryonMass
	meta.Degenerate = m.Degenerate
	meta.Steps = m.Steps

	if err := writeMetadata(dir, meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, profileFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteProfileCSV(f, m.Profile); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveSequence stores the summary of every model in a sweep.
func (s *Store) SaveSequence(seq *sequence.Sequence, cfg tov.Config) (string, error) {
	meta, dir, err := s.newRun(KindSequence, seq.EOS, cfg)
	if err != nil {
		return "", err
	}
	meta.Models = seq.Len()
	meta.Failures = len(seq.Failures)
	meta.TurningPoints = seq.TurningPoints
	meta.AllCausal = seq.AllCausal()
	if heaviest := seq.MaxMass(); heaviest != nil {
		meta.MaxMass = heaviest.Mass
		meta.MaxMassRadius = heaviest.Radius
	}

	if err := writeMetadata(dir, meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, sequenceFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteSequenceCSV(f, seq); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}
	return &meta, nil
}

// readRows parses the numeric rows below the header line of a data file,
// requiring at least cols fields per row.
func readRows(path string, cols int) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < cols {
			return nil, fmt.Errorf("%w: %s row %d has %d columns, want %d", ErrMalformedRun, filepath.Base(path), i+1, len(record), cols)
		}
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d column %d: %w", filepath.Base(path), i+1, j, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) LoadProfile(runID string) (tov.Profile, error) {
	rows, err := readRows(filepath.Join(s.baseDir, runID, profileFile), profileColumns)
	if err != nil {
		return tov.Profile{}, err
	}

	var p tov.Profile
	for _, row := range rows {
		p.R = append(p.R, row[0])
		p.P = append(p.P, row[1])
		p.Epsilon = append(p.Epsilon, row[2])
		p.M = append(p.M, row[3])
		p.Mb = append(p.Mb, row[4])
		p.Nu = append(p.Nu, row[5])
	}
	return p, nil
}

// SequenceRow is one line of a stored sequence.
type SequenceRow struct {
	Index           int
	CentralDensity  float64
	CentralPressure float64
	Mass            float64
	Radius          float64
	BaryonMass      float64
	MaxSoundSpeed   float64
	Causal          bool
	Stable          bool
}

func (s *Store) LoadSequence(runID string) ([]SequenceRow, error) {
	rows, err := readRows(filepath.Join(s.baseDir, runID, sequenceFile), sequenceColumns)
	if err != nil {
		return nil, err
	}

	out := make([]SequenceRow, len(rows))
	for i, row := range rows {
		out[i] = SequenceRow{
			Index:           int(row[0]),
			CentralDensity:  row[1],
			CentralPressure: row[2],
			Mass:            row[3],
			Radius:          row[4],
			BaryonMass:      row[5],
			MaxSoundSpeed:   row[6],
			Causal:          row[7] != 0,
			Stable:          row[8] != 0,
		}
	}
	return out, nil
}

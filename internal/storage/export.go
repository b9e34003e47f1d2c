package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/tovsim/internal/sequence"
	"github.com/san-kum/tovsim/internal/tov"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// WriteProfileCSV writes one row per radial sample.
func WriteProfileCSV(w io.Writer, p tov.Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"r", "pressure", "energy_density", "mass", "baryon_mass", "nu"}); err != nil {
		return err
	}
	for i := range p.R {
		row := []string{
			formatFloat(p.R[i]),
			formatFloat(p.P[i]),
			formatFloat(p.Epsilon[i]),
			formatFloat(p.M[i]),
			formatFloat(p.Mb[i]),
			formatFloat(p.Nu[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSequenceCSV writes one row per converged model. Flags are 0/1 so the
// file stays numeric.
func WriteSequenceCSV(w io.Writer, seq *sequence.Sequence) error {
	cw := csv.NewWriter(w)
	header := []string{"index", "central_density", "central_pressure", "mass", "radius", "baryon_mass", "max_sound_speed", "causal", "stable"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, m := range seq.Models {
		row := []string{
			strconv.Itoa(i),
			formatFloat(seq.Points[i].Density),
			formatFloat(m.CentralPressure),
			formatFloat(m.Mass),
			formatFloat(m.Radius),
			formatFloat(m.BaryonMass),
			formatFloat(seq.Causality[i].MaxSoundSpeed),
			formatBool(seq.Causality[i].Causal),
			formatBool(seq.Stability[i] == sequence.Stable),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Profile *profileRows `json:"profile,omitempty"`
}

type profileRows struct {
	R             []float64 `json:"r"`
	Pressure      []float64 `json:"pressure"`
	EnergyDensity []float64 `json:"energy_density"`
	Mass          []float64 `json:"mass"`
	BaryonMass    []float64 `json:"baryon_mass"`
	Nu            []float64 `json:"nu"`
}

// ExportJSON writes a stored run, with its profile when it has one.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	data := ExportData{Run: *meta}
	if meta.Kind == KindModel {
		p, err := s.LoadProfile(runID)
		if err != nil {
			return err
		}
		data.Profile = &profileRows{R: p.R, Pressure: p.P, EnergyDensity: p.Epsilon, Mass: p.M, BaryonMass: p.Mb, Nu: p.Nu}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV copies the stored data file of a run, profile or sequence, to w.
func (s *Store) WriteCSV(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	name := profileFile
	if meta.Kind == KindSequence {
		name = sequenceFile
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/tovsim/internal/sequence"
	"github.com/san-kum/tovsim/internal/tov"
)

func testModel() *tov.Model {
	return &tov.Model{
		EOS:             "polytrope(K=100,Gamma=2)",
		CentralPressure: 1e-3,
		Mass:            1.6,
		Radius:          8.9,
		BaryonMass:      1.75,
		Steps:           3,
		Profile: tov.Profile{
			R:       []float64{1e-8, 4.5, 8.9},
			P:       []float64{1e-3, 2.5e-4, 0},
			Epsilon: []float64{4.2e-3, 1.8e-3, 0},
			M:       []float64{1.7e-26, 0.7, 1.6},
			Mb:      []float64{1.3e-26, 0.8, 1.75},
			Nu:      []float64{-0.71, -0.48, -0.2833},
		},
	}
}

func testSequence() *sequence.Sequence {
	a, b := testModel(), testModel()
	b.CentralPressure, b.Mass, b.Radius = 2e-3, 1.5, 7.5
	return &sequence.Sequence{
		EOS:           a.EOS,
		Models:        []*tov.Model{a, b},
		Points:        []sequence.Point{{Density: 3.16e-3, Pressure: 1e-3}, {Density: 4.47e-3, Pressure: 2e-3}},
		Causality:     []sequence.Causality{{Causal: true, MaxSoundSpeed: 0.7}, {Causal: false, MaxSoundSpeed: 1.1}},
		Stability:     []sequence.Stability{sequence.Stable, sequence.Unstable},
		MaxMassIndex:  0,
		TurningPoints: 1,
	}
}

func TestStoreSaveLoadModel(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	m := testModel()
	runID, err := st.SaveModel(m, tov.DefaultConfig())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, KindModel+"_") {
		t.Errorf("run id %q lacks kind prefix", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != KindModel || meta.EOS != m.EOS {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Mass != 1.6 || meta.Radius != 8.9 || meta.Steps != 3 {
		t.Errorf("summary not stored: %+v", meta)
	}
	if meta.Solver.RelTol != tov.DefaultRelTol {
		t.Errorf("expected rtol %g, got %g", tov.DefaultRelTol, meta.Solver.RelTol)
	}

	p, err := st.LoadProfile(runID)
	if err != nil {
		t.Fatalf("load profile failed: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", p.Len())
	}
	for i := range p.R {
		if p.R[i] != m.Profile.R[i] || p.M[i] != m.Profile.M[i] || p.Nu[i] != m.Profile.Nu[i] {
			t.Errorf("sample %d not preserved exactly", i)
		}
	}
}

func TestStoreSaveLoadSequence(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.SaveSequence(testSequence(), tov.DefaultConfig())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != KindSequence || meta.Models != 2 || meta.MaxMass != 1.6 || meta.AllCausal {
		t.Errorf("unexpected metadata %+v", meta)
	}

	rows, err := st.LoadSequence(runID)
	if err != nil {
		t.Fatalf("load sequence failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Stable || rows[1].Stable || !rows[0].Causal || rows[1].Causal {
		t.Errorf("flags not preserved: %+v", rows)
	}
	if rows[1].Index != 1 || rows[1].CentralDensity != 4.47e-3 || rows[1].Mass != 1.5 {
		t.Errorf("row not preserved: %+v", rows[1])
	}

	if _, err := st.LoadProfile(runID); err == nil {
		t.Error("a sequence run has no profile")
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.SaveModel(testModel(), tov.DefaultConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.SaveSequence(testSequence(), tov.DefaultConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.SaveModel(testModel(), tov.DefaultConfig())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "profile.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreLoadTruncatedData(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	modelID, err := st.SaveModel(testModel(), tov.DefaultConfig())
	if err != nil {
		t.Fatalf("save model failed: %v", err)
	}
	seqID, err := st.SaveSequence(testSequence(), tov.DefaultConfig())
	if err != nil {
		t.Fatalf("save sequence failed: %v", err)
	}

	truncated := "r,pressure\n1e-8,1e-3\n4.5,2.5e-4\n"
	if err := os.WriteFile(filepath.Join(tmpDir, modelID, "profile.csv"), []byte(truncated), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, seqID, "sequence.csv"), []byte(truncated), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.LoadProfile(modelID); !errors.Is(err, ErrMalformedRun) {
		t.Errorf("LoadProfile: expected ErrMalformedRun, got %v", err)
	}
	if _, err := st.LoadSequence(seqID); !errors.Is(err, ErrMalformedRun) {
		t.Errorf("LoadSequence: expected ErrMalformedRun, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	runID, err := st.SaveModel(testModel(), tov.DefaultConfig())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if data.Run.ID != runID || data.Profile == nil || len(data.Profile.R) != 3 {
		t.Errorf("unexpected export %+v", data)
	}
}

func TestWriteProfileCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProfileCSV(&buf, testModel().Profile); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "r,pressure,energy_density,mass,baryon_mass,nu" {
		t.Errorf("header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1e-08,0.001,") {
		t.Errorf("first row %q", lines[1])
	}
}

func TestWriteCSV(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	modelID, err := st.SaveModel(testModel(), tov.DefaultConfig())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	seqID, err := st.SaveSequence(testSequence(), tov.DefaultConfig())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	tests := []struct {
		id     string
		header string
	}{
		{modelID, "r,pressure"},
		{seqID, "index,central_density"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := st.WriteCSV(&buf, tt.id); err != nil {
			t.Fatalf("%s: %v", tt.id, err)
		}
		if !strings.HasPrefix(buf.String(), tt.header) {
			t.Errorf("%s: unexpected csv %q", tt.id, buf.String())
		}
	}

	if err := st.WriteCSV(&bytes.Buffer{}, "model_missing"); err == nil {
		t.Error("expected error for unknown run")
	}
}

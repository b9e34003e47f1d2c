package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadTable reads a three-column CSV of density, pressure and energy density.
// A non-numeric first row is taken as a header; lines starting with # are
// skipped.
func LoadTable(path string) (density, pressure, energy []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = 3
	r.TrimLeadingSpace = true

	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("config: table %s: %w", path, err)
		}

		vals, perr := parseRow(rec)
		if perr != nil {
			if line == 1 {
				continue
			}
			return nil, nil, nil, fmt.Errorf("config: table %s line %d: %w", path, line, perr)
		}
		density = append(density, vals[0])
		pressure = append(pressure, vals[1])
		energy = append(energy, vals[2])
	}

	if len(density) == 0 {
		return nil, nil, nil, fmt.Errorf("config: table %s has no rows", path)
	}
	return density, pressure, energy, nil
}

func parseRow(rec []string) ([3]float64, error) {
	var vals [3]float64
	for i, field := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return vals, err
		}
		vals[i] = v
	}
	return vals, nil
}

// SaveTable writes rows in the format LoadTable reads.
func SaveTable(path string, density, pressure, energy []float64) error {
	if len(pressure) != len(density) || len(energy) != len(density) {
		return fmt.Errorf("config: table columns differ in length (%d, %d, %d)", len(density), len(pressure), len(energy))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"density", "pressure", "energy_density"}); err != nil {
		return err
	}
	for i := range density {
		row := []string{
			strconv.FormatFloat(density[i], 'g', -1, 64),
			strconv.FormatFloat(pressure[i], 'g', -1, 64),
			strconv.FormatFloat(energy[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

package recorder

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/tvcsim/internal/dynamo"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

// CSV schema: one row per recorded snapshot. Quaternion components are
// written x,y,z,w. Angular velocity is not part of the export schema.
var csvHeader = []string{"t", "x", "y", "z", "vx", "vy", "vz", "qx", "qy", "qz", "qw", "mass"}

func formatFloat(v float64) string {
	// shortest representation that round-trips exactly
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExportCSV writes the full log to w in the flight-log schema.
func (r *Recorder) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, e := range r.entries {
		s := e.State
		row := []string{
			formatFloat(e.T),
			formatFloat(s[vehicle.PosX]),
			formatFloat(s[vehicle.PosY]),
			formatFloat(s[vehicle.PosZ]),
			formatFloat(s[vehicle.VelX]),
			formatFloat(s[vehicle.VelY]),
			formatFloat(s[vehicle.VelZ]),
			formatFloat(s[vehicle.QuatX]),
			formatFloat(s[vehicle.QuatY]),
			formatFloat(s[vehicle.QuatZ]),
			formatFloat(s[vehicle.QuatW]),
			formatFloat(s[vehicle.Mass]),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFile writes the log to a CSV file at path.
func (r *Recorder) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export flight log: %w", err)
	}
	defer f.Close()

	if err := r.ExportCSV(f); err != nil {
		return err
	}
	return f.Close()
}

// ImportCSV parses a flight log in the export schema. Angular velocity is
// not recorded in the schema, so imported states carry zero body rates.
func ImportCSV(rd io.Reader) (*Recorder, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], col)
		}
	}

	rec := New()
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		vals := make([]float64, len(row))
		for i, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse field %q: %w", field, err)
			}
			vals[i] = v
		}

		s := make(dynamo.State, vehicle.StateSize)
		s[vehicle.PosX], s[vehicle.PosY], s[vehicle.PosZ] = vals[1], vals[2], vals[3]
		s[vehicle.VelX], s[vehicle.VelY], s[vehicle.VelZ] = vals[4], vals[5], vals[6]
		s[vehicle.QuatX], s[vehicle.QuatY], s[vehicle.QuatZ] = vals[7], vals[8], vals[9]
		s[vehicle.QuatW] = vals[10]
		s[vehicle.Mass] = vals[11]

		rec.entries = append(rec.entries, Entry{T: vals[0], State: s})
	}

	return rec, nil
}

// ImportFile parses a flight log CSV file at path.
func ImportFile(path string) (*Recorder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import flight log: %w", err)
	}
	defer f.Close()

	return ImportCSV(f)
}

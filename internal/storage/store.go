// Package storage archives completed flights: one directory per run holding
// metadata.json and the flight log CSV.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/tvcsim/internal/flight"
	"github.com/san-kum/tvcsim/internal/recorder"
)

const (
	metadataFile = "metadata.json"
	flightFile   = "flight.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Preset    string             `json:"preset,omitempty"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Vehicle   map[string]float64 `json:"vehicle"`
	Stats     flight.Stats       `json:"stats"`
}

// Save archives a flight and returns its run ID.
func (s *Store) Save(preset string, dt float64, vehicleParams map[string]float64, stats flight.Stats, rec *recorder.Recorder) (string, error) {
	runID := fmt.Sprintf("flight_%s", uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Preset:    preset,
		Dt:        dt,
		Steps:     rec.Len(),
		Vehicle:   vehicleParams,
		Stats:     stats,
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

	if err := rec.ExportFile(filepath.Join(runDir, flightFile)); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns metadata for every archived run, skipping unreadable entries.
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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFlight reads back the archived flight log for replay or export.
func (s *Store) LoadFlight(runID string) (*recorder.Recorder, error) {
	return recorder.ImportFile(filepath.Join(s.baseDir, runID, flightFile))
}

// FlightPath returns the location of a run's CSV on disk.
func (s *Store) FlightPath(runID string) string {
	return filepath.Join(s.baseDir, runID, flightFile)
}

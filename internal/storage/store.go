package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/ionosim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// ErrRunNotFound is returned when a run directory has no metadata.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunSpec describes how a rollout was produced.
type RunSpec struct {
	Preset     string
	Mode       string
	Controller string
	Dt         float64
	Steps      int
	Seed       int64
	StateNames []string
	InputNames []string
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Mode       string             `json:"mode"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	StepsTaken int                `json:"steps_taken"`
	Controller string             `json:"controller"`
	StateNames []string           `json:"state_names"`
	InputNames []string           `json:"input_names"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Spec recovers the RunSpec a run was saved with.
func (m RunMetadata) Spec() RunSpec {
	return RunSpec{
		Preset:     m.Preset,
		Mode:       m.Mode,
		Controller: m.Controller,
		Dt:         m.Dt,
		Steps:      m.Steps,
		Seed:       m.Seed,
		StateNames: m.StateNames,
		InputNames: m.InputNames,
	}
}

func newMetadata(id string, spec RunSpec, result *dynamo.Result) RunMetadata {
	return RunMetadata{
		ID:         id,
		Preset:     spec.Preset,
		Mode:       spec.Mode,
		Timestamp:  time.Now().UTC(),
		Seed:       spec.Seed,
		Dt:         spec.Dt,
		Steps:      spec.Steps,
		StepsTaken: result.StepsTaken,
		Controller: spec.Controller,
		StateNames: spec.StateNames,
		InputNames: spec.InputNames,
		Metrics:    result.Metrics,
	}
}

// Save writes metadata.json and states.csv into a fresh run directory and
// returns the run ID.
func (s *Store) Save(spec RunSpec, result *dynamo.Result) (string, error) {
	name := spec.Preset
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%s", name, uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}

	meta := newMetadata(runID, spec, result)

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, spec.StateNames, spec.InputNames, result); err != nil {
		return "", fmt.Errorf("write states: %w", err)
	}

	return runID, nil
}

// List returns every readable run, newest first.
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

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadStates reads a run's trajectory back. Controls has one entry per
// applied step, so it is one shorter than states for a complete run.
func (s *Store) LoadStates(runID string) (*Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

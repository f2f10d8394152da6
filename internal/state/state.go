package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const recordVersion = 1

// DefaultPath is where the deployment record lives, relative to the working
// directory.
const DefaultPath = ".reelstack/state.json"

// Record is the persisted deployment record. It exists so status and destroy
// can operate without re-reading the manifest against the control plane.
type Record struct {
	Version   int               `json:"version"`
	Serial    int               `json:"serial"`
	Lineage   string            `json:"lineage"`
	Stack     string            `json:"stack"`
	Resources []Resource        `json:"resources"`
	Outputs   map[string]string `json:"outputs"`
}

// Resource is one provisioned resource as recorded after deploy.
type Resource struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Region string `json:"region"`
}

// SetResource records a provisioned resource, replacing any prior entry with
// the same kind and name.
func (r *Record) SetResource(res Resource) {
	for i, existing := range r.Resources {
		if existing.Kind == res.Kind && existing.Name == res.Name {
			r.Resources[i] = res
			return
		}
	}
	r.Resources = append(r.Resources, res)
}

// Manager handles reading and writing of the deployment record.
type Manager struct {
	path string
}

func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultPath
	}
	return &Manager{path: path}
}

// Read loads the record from the configured path. If no record exists yet, a
// fresh one with a new lineage is returned.
func (m *Manager) Read() (*Record, error) {
	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return &Record{
			Version: recordVersion,
			Lineage: uuid.NewString(),
			Outputs: map[string]string{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read deployment record %s: %w", m.path, err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("parse deployment record %s: %w", m.path, err)
	}
	if rec.Outputs == nil {
		rec.Outputs = map[string]string{}
	}
	return &rec, nil
}

// Write persists the record, bumping its serial.
func (m *Manager) Write(rec *Record) error {
	rec.Version = recordVersion
	rec.Serial++

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create record directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode deployment record: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write deployment record %s: %w", m.path, err)
	}
	return nil
}

// Remove deletes the record file, if present.
func (m *Manager) Remove() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove deployment record %s: %w", m.path, err)
	}
	return nil
}

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
)

// ShipmentsFile is the collection's file name inside the data directory.
const ShipmentsFile = "shipments.json"

// FileStore keeps the collection in a single JSON array file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Load treats a missing or blank file as an empty collection.
func (s *FileStore) Load(ctx context.Context) ([]models.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Shipment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []models.Shipment{}, nil
	}
	var shipments []models.Shipment
	if err := json.Unmarshal(raw, &shipments); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if shipments == nil {
		shipments = []models.Shipment{}
	}
	return shipments, nil
}

// Save writes a temp file next to the target and renames it over, so readers never
// see a half written array. The directory is created when missing.
func (s *FileStore) Save(ctx context.Context, shipments []models.Shipment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if shipments == nil {
		shipments = []models.Shipment{}
	}
	data, err := json.MarshalIndent(shipments, "", "  ")
	if err != nil {
		return fmt.Errorf("encode shipments: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".shipments-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

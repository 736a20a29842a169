package reference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/singleflight"
)

const (
	CarriersFile        = "carriers.json"
	DistancesFile       = "distances.json"
	EmissionFactorsFile = "emission_factors.json"
)

// FileSource reads the reference tables from JSON files in a data directory.
// Comments and trailing commas are tolerated (JSONC). A missing file is an empty
// table, which makes every lookup fall back to its default.
//
// With caching on, parsed tables are reused only while the file content hashes to
// the same digest, so a cached read is never staler than a fresh one.
type FileSource struct {
	dir     string
	caching bool

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	digest [32]byte
	value  any
}

// NewFileSource re-parses every file on every call.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// NewCachedFileSource keeps parsed tables keyed by content digest.
func NewCachedFileSource(dir string) *FileSource {
	return &FileSource{dir: dir, caching: true, entries: make(map[string]cacheEntry)}
}

// Dir returns the data directory.
func (s *FileSource) Dir() string { return s.dir }

func (s *FileSource) Carriers(ctx context.Context) ([]models.Carrier, error) {
	v, err := s.read(ctx, CarriersFile, func(data []byte) (any, error) {
		var carriers []models.Carrier
		err := json.Unmarshal(data, &carriers)
		return carriers, err
	})
	if err != nil || v == nil {
		return nil, err
	}
	carriers := v.([]models.Carrier)
	out := make([]models.Carrier, len(carriers))
	copy(out, carriers)
	return out, nil
}

func (s *FileSource) Distances(ctx context.Context) (map[string]float64, error) {
	return s.readFloatMap(ctx, DistancesFile)
}

func (s *FileSource) EmissionFactors(ctx context.Context) (map[string]float64, error) {
	return s.readFloatMap(ctx, EmissionFactorsFile)
}

func (s *FileSource) readFloatMap(ctx context.Context, name string) (map[string]float64, error) {
	v, err := s.read(ctx, name, func(data []byte) (any, error) {
		var m map[string]float64
		err := json.Unmarshal(data, &m)
		return m, err
	})
	if err != nil || v == nil {
		return map[string]float64{}, err
	}
	src := v.(map[string]float64)
	out := make(map[string]float64, len(src))
	for k, val := range src {
		out[k] = val
	}
	return out, nil
}

func (s *FileSource) read(ctx context.Context, name string, parse func([]byte) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.caching {
		return s.readFile(name, parse)
	}
	// concurrent readers of one file share a single read and parse
	v, err, _ := s.group.Do(name, func() (any, error) {
		return s.readFile(name, parse)
	})
	return v, err
}

func (s *FileSource) readFile(name string, parse func([]byte) (any, error)) (any, error) {
	path := filepath.Join(s.dir, name)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.forget(name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	data := jsonc.ToJSON(raw)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	if !s.caching {
		v, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return v, nil
	}

	digest := blake3.Sum256(data)
	s.mu.Lock()
	entry, ok := s.entries[name]
	s.mu.Unlock()
	if ok && entry.digest == digest {
		return entry.value, nil
	}

	v, err := parse(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		delete(s.entries, name)
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	s.entries[name] = cacheEntry{digest: digest, value: v}
	return v, nil
}

func (s *FileSource) forget(name string) {
	if !s.caching {
		return
	}
	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
}

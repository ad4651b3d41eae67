// Package snapshot loads the entity snapshot the resolvers run against.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/storage"
)

// ErrNoSnapshot is returned when no snapshot data is available.
var ErrNoSnapshot = errors.New("snapshot: no snapshot available")

// Source fetches a complete snapshot.
type Source interface {
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// FileSource reads a JSON or YAML snapshot file, chosen by extension.
type FileSource struct {
	Path string
}

// NewFileSource returns a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// FetchSnapshot reads and validates the file.
func (s *FileSource) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snap, err := ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	if err := Validate(snap); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return snap, nil
}

// ReadFile decodes a snapshot file. .yaml and .yml are read as YAML,
// everything else as JSON. A missing file yields ErrNoSnapshot.
func ReadFile(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoSnapshot, path)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap models.Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &snap)
	default:
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// RecordStore is the database side of a snapshot: storage.SQLiteStorage implements it.
type RecordStore interface {
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
	ReplaceSnapshot(ctx context.Context, snap *models.Snapshot) error
}

// DBSource reads the snapshot imported into the database.
type DBSource struct {
	store RecordStore
}

// NewDBSource returns a source backed by store.
func NewDBSource(store RecordStore) *DBSource {
	return &DBSource{store: store}
}

// FetchSnapshot loads the imported records.
func (s *DBSource) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: database has no imported records", ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// Import validates snap and stores it, replacing any previous import.
func Import(ctx context.Context, store RecordStore, snap *models.Snapshot) error {
	if err := Validate(snap); err != nil {
		return err
	}
	return store.ReplaceSnapshot(ctx, snap)
}

// Validate checks that identifiers are present and unique within each collection.
func Validate(snap *models.Snapshot) error {
	var errs []error
	check := func(collection string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for i, id := range ids {
			if id == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: missing id", collection, i))
				continue
			}
			if seen[id] {
				errs = append(errs, fmt.Errorf("%s: duplicate id %q", collection, id))
			}
			seen[id] = true
		}
	}

	check("clinics", collect(snap.Clinics, func(c models.Clinic) string { return c.ID }))
	check("users", collect(snap.Users, func(u models.User) string { return u.ID }))
	check("proposals", collect(snap.Proposals, func(p models.Proposal) string { return strconv.FormatInt(p.ID, 10) }))
	check("visits", collect(snap.Visits, func(v models.VisitReport) string { return v.ID }))
	check("surgery_reports", collect(snap.SurgeryReports, func(r models.SurgeryReport) string { return r.ID }))
	check("products", collect(snap.Products, func(p models.Product) string { return p.ID }))
	check("campaigns", collect(snap.Campaigns, func(c models.Campaign) string { return c.ID }))
	check("regions", collect(snap.Regions, func(r models.Region) string { return r.ID }))
	check("stock_assignments", collect(snap.StockAssignments, func(a models.StockAssignment) string { return a.ID }))

	return errors.Join(errs...)
}

func collect[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}

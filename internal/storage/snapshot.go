package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hyperjump/asistan/internal/models"
)

type snapshotRecord struct {
	collection string
	id         string
	payload    []byte
}

func appendRecords[T any](out []snapshotRecord, collection string, items []T, id func(T) string) ([]snapshotRecord, error) {
	for _, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s record: %w", collection, err)
		}
		out = append(out, snapshotRecord{collection: collection, id: id(item), payload: payload})
	}
	return out, nil
}

func decodeInto[T any](dst *[]T) func([]byte) error {
	return func(payload []byte) error {
		var item T
		if err := json.Unmarshal(payload, &item); err != nil {
			return err
		}
		*dst = append(*dst, item)
		return nil
	}
}

func flatten(snap *models.Snapshot) ([]snapshotRecord, error) {
	out, err := appendRecords(nil, "clinics", snap.Clinics, func(c models.Clinic) string { return c.ID })
	if err != nil {
		return nil, err
	}
	if out, err = appendRecords(out, "users", snap.Users, func(u models.User) string { return u.ID }); err != nil {
		return nil, err
	}
	if out, err = appendRecords(out, "proposals", snap.Proposals, func(p models.Proposal) string { return strconv.FormatInt(p.ID, 10) }); err != nil {
		return nil, err
	}
	if out, err = appendRecords(out, "visits", snap.Visits, func(v models.VisitReport) string { return v.ID }); err != nil {
		return nil, err
	}
	if out, err = appendRecords(out, "surgery_reports", snap.SurgeryReports, func(r models.SurgeryReport) string { return r.ID }); err != nil {
		return nil, err
	}
	if out, err = appendRecords(out, "products", snap.Products, func(p models.Product) string { return p.ID }); err != nil {
		return nil, err
	}
	if out, err = appendRecords(out, "campaigns", snap.Campaigns, func(c models.Campaign) string { return c.ID }); err != nil {
		return nil, err
	}
	if out, err = appendRecords(out, "regions", snap.Regions, func(r models.Region) string { return r.ID }); err != nil {
		return nil, err
	}
	return appendRecords(out, "stock_assignments", snap.StockAssignments, func(a models.StockAssignment) string { return a.ID })
}

// ReplaceSnapshot replaces every stored snapshot record with the contents of snap
// in a single transaction. Collection order is kept through a position column.
// Records whose id repeats within a collection are rejected.
func (s *SQLiteStorage) ReplaceSnapshot(ctx context.Context, snap *models.Snapshot) error {
	records, err := flatten(snap)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_records`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_records (collection, id, position, payload) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	position := make(map[string]int)
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.collection, r.id, position[r.collection], string(r.payload)); err != nil {
			return fmt.Errorf("failed to insert %s %q: %w", r.collection, r.id, err)
		}
		position[r.collection]++
	}
	return tx.Commit()
}

// LoadSnapshot reads the stored snapshot records back in their original order.
// It returns ErrNotFound when no records have been imported.
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	decoders := map[string]func([]byte) error{
		"clinics":           decodeInto(&snap.Clinics),
		"users":             decodeInto(&snap.Users),
		"proposals":         decodeInto(&snap.Proposals),
		"visits":            decodeInto(&snap.Visits),
		"surgery_reports":   decodeInto(&snap.SurgeryReports),
		"products":          decodeInto(&snap.Products),
		"campaigns":         decodeInto(&snap.Campaigns),
		"regions":           decodeInto(&snap.Regions),
		"stock_assignments": decodeInto(&snap.StockAssignments),
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT collection, id, payload FROM snapshot_records ORDER BY collection, position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var collection, id, payload string
		if err := rows.Scan(&collection, &id, &payload); err != nil {
			return nil, err
		}
		decode, ok := decoders[collection]
		if !ok {
			continue
		}
		if err := decode([]byte(payload)); err != nil {
			return nil, fmt.Errorf("failed to decode %s %q: %w", collection, id, err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("snapshot records: %w", ErrNotFound)
	}
	return snap, nil
}

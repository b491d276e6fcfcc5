// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/catalog"
	"github.com/danielhkuo/fieldbook/db"
	"github.com/danielhkuo/fieldbook/logger"
	"github.com/danielhkuo/fieldbook/models"
	"github.com/google/uuid"
)

// Store records entry values in one physical table per value type.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(conn *sql.DB) *Store {
	return &Store{db: conn, now: time.Now}
}

// Pivot is one of the physical entry tables.
type Pivot string

const (
	PivotNumber Pivot = "entry_number"
	PivotBool   Pivot = "entry_bool"
	PivotText   Pivot = "entry_text"
)

// Pivots lists every entry table.
var Pivots = []Pivot{PivotNumber, PivotBool, PivotText}

// PivotFor returns the table holding values of type vt. Enum values are
// stored as text.
func PivotFor(vt models.ValueType) Pivot {
	switch vt {
	case models.TypeNumber:
		return PivotNumber
	case models.TypeBoolean:
		return PivotBool
	}
	return PivotText
}

// WriteEntry records a value for (entityID, fieldID), replacing any earlier
// value and date. The field must belong to the entity's group.
func (s *Store) WriteEntry(ctx context.Context, entityID, fieldID string, req models.WriteEntryRequest) (models.Entry, error) {
	var groupID string
	err := s.db.QueryRowContext(ctx, `SELECT group_id FROM entity WHERE id = $1`, entityID).Scan(&groupID)
	if err == sql.ErrNoRows {
		return models.Entry{}, apperr.NotFound("entity", entityID)
	}
	if err != nil {
		return models.Entry{}, errors.Wrap(err, "failed to query entity")
	}

	entry, err := s.write(ctx, s.db, entityID, groupID, models.EntryInput{
		FieldID: fieldID,
		Value:   req.Value,
		Date:    req.Date,
	})
	if err != nil {
		return models.Entry{}, err
	}

	logger.Logger.Infow("entry written", "entity_id", entityID, "field_id", fieldID, "entry_id", entry.ID)
	return entry, nil
}

// write validates and upserts one entry through q.
func (s *Store) write(ctx context.Context, q db.Querier, entityID, groupID string, in models.EntryInput) (models.Entry, error) {
	if strings.TrimSpace(in.FieldID) == "" {
		return models.Entry{}, apperr.New(apperr.KindInvalid, "field_id is required")
	}

	f, err := catalog.LoadField(ctx, q, in.FieldID)
	if err != nil {
		return models.Entry{}, err
	}
	if f.GroupID != groupID {
		return models.Entry{}, apperr.New(apperr.KindFieldMismatch, "field %q does not belong to the entity's group", f.Name)
	}

	value, err := Coerce(f, in.Value)
	if err != nil {
		return models.Entry{}, err
	}
	date, err := ParseDate(in.Date, s.now)
	if err != nil {
		return models.Entry{}, err
	}

	entry := models.Entry{EntityID: entityID, FieldID: f.ID, Type: f.ValueType, Value: value, Date: date}
	err = q.QueryRowContext(ctx, `
		INSERT INTO `+string(PivotFor(f.ValueType))+` (id, entity_id, field_id, value, entry_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (entity_id, field_id) DO UPDATE
		SET value = excluded.value, entry_date = excluded.entry_date
		RETURNING id
	`, uuid.NewString(), entityID, f.ID, dbValue(value), date).Scan(&entry.ID)
	if err != nil {
		return models.Entry{}, errors.Wrap(err, "failed to write entry")
	}
	return entry, nil
}

// ReadEntry returns the current value of (entityID, fieldID).
func (s *Store) ReadEntry(ctx context.Context, entityID, fieldID string) (models.Entry, error) {
	f, err := catalog.LoadField(ctx, s.db, fieldID)
	if err != nil {
		return models.Entry{}, err
	}

	entry := models.Entry{EntityID: entityID, FieldID: fieldID, Type: f.ValueType}
	dest, read := scanTarget(f.ValueType)
	err = s.db.QueryRowContext(ctx, `
		SELECT id, value, entry_date FROM `+string(PivotFor(f.ValueType))+`
		WHERE entity_id = $1 AND field_id = $2
	`, entityID, fieldID).Scan(&entry.ID, dest, &entry.Date)
	if err == sql.ErrNoRows {
		return models.Entry{}, apperr.New(apperr.KindNotFound, "no %q entry for entity %q", f.Name, entityID)
	}
	if err != nil {
		return models.Entry{}, errors.Wrap(err, "failed to query entry")
	}
	entry.Value = read()
	return entry, nil
}

// CreateEntityWithEntries creates an entity in the named group and records
// each entry. Entries that fail are reported and skipped. If none succeed
// the entity is not kept and the call fails with BatchFailed.
func (s *Store) CreateEntityWithEntries(ctx context.Context, req models.CreateEntityRequest) (models.CreateEntityResponse, error) {
	if len(req.Entries) == 0 {
		return models.CreateEntityResponse{}, apperr.New(apperr.KindInvalid, "at least one entry is required")
	}

	group, err := catalog.ResolveGroup(ctx, s.db, req.GroupName)
	if err != nil {
		return models.CreateEntityResponse{}, err
	}

	resp := models.CreateEntityResponse{
		EntityID:          uuid.NewString(),
		GroupID:           group.ID,
		GroupName:         group.Name,
		SuccessfulEntries: []models.Entry{},
	}

	err = db.InTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entity (id, group_id, created_at) VALUES ($1, $2, $3)
		`, resp.EntityID, group.ID, s.now())
		if err != nil {
			return errors.Wrap(err, "failed to insert entity")
		}

		for _, in := range req.Entries {
			// Each entry runs under a savepoint so a failed one leaves the
			// transaction usable on Postgres.
			if _, err := tx.ExecContext(ctx, `SAVEPOINT entry_item`); err != nil {
				return errors.Wrap(err, "failed to create savepoint")
			}

			entry, err := s.write(ctx, tx, resp.EntityID, group.ID, in)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindInternal {
					return err
				}
				if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT entry_item`); rbErr != nil {
					return errors.Wrap(rbErr, "failed to roll back savepoint")
				}
				logger.Logger.Warnw("entry rejected",
					"entity_id", resp.EntityID,
					"field_id", in.FieldID,
					"kind", apperr.KindOf(err),
					"error", apperr.Message(err),
				)
				resp.FailedEntries = append(resp.FailedEntries, models.EntryFailure{
					FieldID: in.FieldID,
					Kind:    string(apperr.KindOf(err)),
					Error:   apperr.Message(err),
				})
				continue
			}

			if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT entry_item`); err != nil {
				return errors.Wrap(err, "failed to release savepoint")
			}
			resp.SuccessfulEntries = append(resp.SuccessfulEntries, entry)
		}

		if len(resp.SuccessfulEntries) == 0 {
			return apperr.NewWithDetails(apperr.KindBatchFailed, resp.FailedEntries,
				"all %d entries failed; entity not created", len(req.Entries))
		}
		return nil
	})
	if err != nil {
		return models.CreateEntityResponse{}, err
	}

	logger.Logger.Infow("entity created",
		"entity_id", resp.EntityID,
		"group_id", group.ID,
		"entries", len(resp.SuccessfulEntries),
		"failed", len(resp.FailedEntries),
	)
	return resp, nil
}

// GetEntity returns the entity row.
func (s *Store) GetEntity(ctx context.Context, id string) (models.Entity, error) {
	e := models.Entity{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT group_id FROM entity WHERE id = $1`, id).Scan(&e.GroupID)
	if err == sql.ErrNoRows {
		return models.Entity{}, apperr.NotFound("entity", id)
	}
	if err != nil {
		return models.Entity{}, errors.Wrap(err, "failed to query entity")
	}
	return e, nil
}

// ListEntityIDs returns the ids of all entities of a group, oldest first.
func (s *Store) ListEntityIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM entity WHERE group_id = $1 ORDER BY created_at, id
	`, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list entities")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan entity")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "failed to list entities")
}

// ListEntities returns every entity across all groups, oldest first.
func (s *Store) ListEntities(ctx context.Context) ([]models.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id FROM entity ORDER BY created_at, id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list entities")
	}
	defer rows.Close()

	ents := []models.Entity{}
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(&e.ID, &e.GroupID); err != nil {
			return nil, errors.Wrap(err, "failed to scan entity")
		}
		ents = append(ents, e)
	}
	return ents, errors.Wrap(rows.Err(), "failed to list entities")
}

// DeleteEntity removes an entity and all its entries.
func (s *Store) DeleteEntity(ctx context.Context, id string) (models.DeleteResult, error) {
	res, err := db.DeleteByID(ctx, s.db, "entity", id)
	if err == nil {
		logger.Logger.Infow("entity deleted", "entity_id", id, "result", res)
	}
	return res, err
}

// Row is one stored value joined with its field.
type Row struct {
	EntityID  string
	FieldID   string
	FieldName string
	Type      models.ValueType
	EntryID   string
	Value     models.Value
	Date      string
}

// maxBoundIDs caps the entity ids bound into one pivot read, well under
// SQLite's host parameter limit.
const maxBoundIDs = 500

// ScanPivot reads every value of one pivot table for the entities of a
// group. When entityIDs is non-nil only those entities are read, in batches
// of maxBoundIDs.
func (s *Store) ScanPivot(ctx context.Context, p Pivot, groupID string, entityIDs []string) ([]Row, error) {
	if entityIDs == nil {
		return s.scanPivot(ctx, p, groupID, nil)
	}
	var out []Row
	for start := 0; start < len(entityIDs); start += maxBoundIDs {
		end := min(start+maxBoundIDs, len(entityIDs))
		rows, err := s.scanPivot(ctx, p, groupID, entityIDs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (s *Store) scanPivot(ctx context.Context, p Pivot, groupID string, entityIDs []string) ([]Row, error) {
	query := `
		SELECT e.entity_id, e.field_id, f.name, f.value_type, e.id, e.value, e.entry_date
		FROM ` + string(p) + ` e
		JOIN field f ON f.id = e.field_id
		WHERE f.group_id = $1`
	args := []interface{}{groupID}
	if len(entityIDs) > 0 {
		query += ` AND e.entity_id IN (` + db.Placeholders(2, len(entityIDs)) + `)`
		for _, id := range entityIDs {
			args = append(args, id)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", p)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r  Row
			vt string
		)
		dest, read := scanTarget(pivotType(p))
		if err := rows.Scan(&r.EntityID, &r.FieldID, &r.FieldName, &vt, &r.EntryID, dest, &r.Date); err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s", p)
		}
		r.Type = models.ValueType(vt)
		r.Value = read()
		out = append(out, r)
	}
	return out, errors.Wrapf(rows.Err(), "failed to read %s", p)
}

func pivotType(p Pivot) models.ValueType {
	switch p {
	case PivotNumber:
		return models.TypeNumber
	case PivotBool:
		return models.TypeBoolean
	}
	return models.TypeText
}

// scanTarget returns a Scan destination for a value of type vt and a
// function turning it into a tagged value.
func scanTarget(vt models.ValueType) (interface{}, func() models.Value) {
	switch vt {
	case models.TypeNumber:
		var n float64
		return &n, func() models.Value { return models.NumberValue(n) }
	case models.TypeBoolean:
		var b bool
		return &b, func() models.Value { return models.BoolValue(b) }
	}
	var s string
	return &s, func() models.Value { return models.TextValue(s) }
}

func dbValue(v models.Value) interface{} {
	switch v := v.(type) {
	case models.NumberValue:
		return float64(v)
	case models.BoolValue:
		return bool(v)
	case models.TextValue:
		return string(v)
	}
	return nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/db"
	"github.com/danielhkuo/fieldbook/logger"
	"github.com/danielhkuo/fieldbook/models"
	"github.com/google/uuid"
)

// CreateField adds a typed field to the named group. The field row and its
// enum options are written in one transaction.
func (s *Service) CreateField(ctx context.Context, req models.CreateFieldRequest) (models.Field, error) {
	name, key, err := cleanName("field", req.Name)
	if err != nil {
		return models.Field{}, err
	}

	vt, ok := models.ParseValueType(req.ValueType)
	if !ok {
		return models.Field{}, errors.WithHint(
			apperr.New(apperr.KindInvalidType, "invalid value type %q", req.ValueType),
			"use Number, Text, Boolean or Enum",
		)
	}

	options, err := checkOptions(vt, req.EnumOptions)
	if err != nil {
		return models.Field{}, err
	}

	group, err := s.ResolveGroup(ctx, req.GroupName)
	if err != nil {
		return models.Field{}, err
	}

	f := models.Field{
		ID:          uuid.NewString(),
		GroupID:     group.ID,
		Name:        name,
		ValueType:   vt,
		Units:       cleanUnits(req.Units),
		EnumOptions: options,
	}

	err = db.InTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO field (id, group_id, name, name_key, value_type, units, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, f.ID, f.GroupID, f.Name, key, string(f.ValueType), nullString(f.Units), s.now())
		if db.IsUniqueViolation(err) {
			return apperr.New(apperr.KindDuplicate, "field %q already exists in group %q", name, group.Name)
		}
		if err != nil {
			return errors.Wrap(err, "failed to insert field")
		}
		return insertOptions(ctx, tx, f.ID, options)
	})
	if err != nil {
		return models.Field{}, err
	}

	logger.Logger.Infow("field created",
		"field_id", f.ID,
		"group_id", f.GroupID,
		"name", f.Name,
		"value_type", f.ValueType,
		"enum_options", len(options),
	)
	return f, nil
}

// UpdateField renames a field, changes its units and, for Enum fields,
// replaces the whole option set. The value type cannot change.
//
// An empty name keeps the current one. Nil units keep the current units and
// an empty string clears them.
func (s *Service) UpdateField(ctx context.Context, id string, req models.UpdateFieldRequest) (models.Field, error) {
	var f models.Field
	err := db.InTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		f, err = LoadField(ctx, tx, id)
		if err != nil {
			return err
		}

		if req.ValueType != "" {
			vt, ok := models.ParseValueType(req.ValueType)
			if !ok {
				return apperr.New(apperr.KindInvalidType, "invalid value type %q", req.ValueType)
			}
			if vt != f.ValueType {
				return errors.WithHint(
					apperr.New(apperr.KindInvalidType, "value type of field %q is %s and cannot change to %s", f.Name, f.ValueType, vt),
					"create a new field instead",
				)
			}
		}

		key := NormalizeName(f.Name)
		if strings.TrimSpace(req.Name) != "" {
			f.Name, key, err = cleanName("field", req.Name)
			if err != nil {
				return err
			}
		}
		if req.Units != nil {
			f.Units = cleanUnits(req.Units)
		}

		options, err := checkOptions(f.ValueType, req.EnumOptions)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE field SET name = $1, name_key = $2, units = $3 WHERE id = $4
		`, f.Name, key, nullString(f.Units), f.ID)
		if db.IsUniqueViolation(err) {
			return apperr.New(apperr.KindDuplicate, "field %q already exists in its group", f.Name)
		}
		if err != nil {
			return errors.Wrap(err, "failed to update field")
		}

		if f.ValueType == models.TypeEnum {
			if _, err := tx.ExecContext(ctx, `DELETE FROM enum_option WHERE field_id = $1`, f.ID); err != nil {
				return errors.Wrap(err, "failed to clear enum options")
			}
			if err := insertOptions(ctx, tx, f.ID, options); err != nil {
				return err
			}
			f.EnumOptions = options
		}
		return nil
	})
	if err != nil {
		return models.Field{}, err
	}

	logger.Logger.Infow("field updated", "field_id", f.ID, "name", f.Name)
	return f, nil
}

func (s *Service) GetField(ctx context.Context, id string) (models.Field, error) {
	return LoadField(ctx, s.db, id)
}

// LoadField reads one field with its enum options through q, so it can run
// inside a caller's transaction.
func LoadField(ctx context.Context, q db.Querier, id string) (models.Field, error) {
	var (
		f     models.Field
		vt    string
		units sql.NullString
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, group_id, name, value_type, units FROM field WHERE id = $1
	`, id).Scan(&f.ID, &f.GroupID, &f.Name, &vt, &units)
	if err == sql.ErrNoRows {
		return models.Field{}, apperr.NotFound("field", id)
	}
	if err != nil {
		return models.Field{}, errors.Wrap(err, "failed to query field")
	}
	f.ValueType = models.ValueType(vt)
	if units.Valid {
		f.Units = &units.String
	}

	if f.ValueType == models.TypeEnum {
		opts, err := loadOptions(ctx, q, []string{f.ID})
		if err != nil {
			return models.Field{}, err
		}
		f.EnumOptions = opts[f.ID]
	}
	return f, nil
}

// FieldByName resolves a field name within a group.
func (s *Service) FieldByName(ctx context.Context, groupID, name string) (models.Field, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM field WHERE group_id = $1 AND name_key = $2
	`, groupID, NormalizeName(name)).Scan(&id)
	if err == sql.ErrNoRows {
		return models.Field{}, apperr.NotFound("field", name)
	}
	if err != nil {
		return models.Field{}, errors.Wrap(err, "failed to query field")
	}
	return LoadField(ctx, s.db, id)
}

// ListFields returns all fields, or only those of groupID when it is set.
// Enum fields carry their options.
func (s *Service) ListFields(ctx context.Context, groupID string) ([]models.Field, error) {
	query := `SELECT id, group_id, name, value_type, units FROM field`
	var args []interface{}
	if groupID != "" {
		query += ` WHERE group_id = $1`
		args = append(args, groupID)
	}
	query += ` ORDER BY group_id, name_key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list fields")
	}

	fields := []models.Field{}
	var enumIDs []string
	for rows.Next() {
		var (
			f     models.Field
			vt    string
			units sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.GroupID, &f.Name, &vt, &units); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan field")
		}
		f.ValueType = models.ValueType(vt)
		if units.Valid {
			f.Units = &units.String
		}
		if f.ValueType == models.TypeEnum {
			enumIDs = append(enumIDs, f.ID)
		}
		fields = append(fields, f)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list fields")
	}

	if len(enumIDs) == 0 {
		return fields, nil
	}
	opts, err := loadOptions(ctx, s.db, enumIDs)
	if err != nil {
		return nil, err
	}
	for i := range fields {
		if fields[i].ValueType == models.TypeEnum {
			fields[i].EnumOptions = opts[fields[i].ID]
		}
	}
	return fields, nil
}

// DeleteField removes the field with its options and recorded entries.
func (s *Service) DeleteField(ctx context.Context, id string) (models.DeleteResult, error) {
	res, err := db.DeleteByID(ctx, s.db, "field", id)
	if err == nil {
		logger.Logger.Infow("field deleted", "field_id", id, "result", res)
	}
	return res, err
}

// checkOptions validates the option list against the value type and returns
// the trimmed options.
func checkOptions(vt models.ValueType, options []string) ([]string, error) {
	if vt != models.TypeEnum {
		if len(options) > 0 {
			return nil, apperr.New(apperr.KindInvalidEnum, "enum options are only allowed on Enum fields")
		}
		return nil, nil
	}
	if len(options) == 0 {
		return nil, errors.WithHint(
			apperr.New(apperr.KindInvalidEnum, "enum fields require at least one option"),
			"pass enum_options",
		)
	}

	seen := make(map[string]bool, len(options))
	out := make([]string, 0, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			return nil, apperr.New(apperr.KindInvalidEnum, "enum options must not be blank")
		}
		if seen[o] {
			return nil, apperr.New(apperr.KindInvalidEnum, "duplicate enum option %q", o)
		}
		seen[o] = true
		out = append(out, o)
	}
	return out, nil
}

func cleanUnits(units *string) *string {
	if units == nil {
		return nil
	}
	u := strings.TrimSpace(*units)
	if u == "" {
		return nil
	}
	return &u
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func insertOptions(ctx context.Context, tx *sql.Tx, fieldID string, options []string) error {
	for i, o := range options {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO enum_option (field_id, option_value, position)
			VALUES ($1, $2, $3)
		`, fieldID, o, i)
		if err != nil {
			return errors.Wrap(err, "failed to insert enum option")
		}
	}
	return nil
}

func loadOptions(ctx context.Context, q db.Querier, fieldIDs []string) (map[string][]string, error) {
	args := make([]interface{}, len(fieldIDs))
	for i, id := range fieldIDs {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx, `
		SELECT field_id, option_value FROM enum_option
		WHERE field_id IN (`+db.Placeholders(1, len(fieldIDs))+`)
		ORDER BY field_id, position
	`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query enum options")
	}
	defer rows.Close()

	out := make(map[string][]string, len(fieldIDs))
	for rows.Next() {
		var id, opt string
		if err := rows.Scan(&id, &opt); err != nil {
			return nil, errors.Wrap(err, "failed to scan enum option")
		}
		out[id] = append(out[id], opt)
	}
	return out, errors.Wrap(rows.Err(), "failed to query enum options")
}

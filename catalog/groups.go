// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/db"
	"github.com/danielhkuo/fieldbook/logger"
	"github.com/danielhkuo/fieldbook/models"
	"github.com/google/uuid"
)

// CreateGroup adds a group to the named category. Group names are unique
// within their category.
func (s *Service) CreateGroup(ctx context.Context, categoryName, name string) (models.Group, error) {
	name, key, err := cleanName("group", name)
	if err != nil {
		return models.Group{}, err
	}

	cat, err := categoryByName(ctx, s.db, categoryName)
	if err != nil {
		return models.Group{}, err
	}

	g := models.Group{ID: uuid.NewString(), CategoryID: cat.ID, Name: name}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO asset_group (id, category_id, name, name_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, g.ID, g.CategoryID, g.Name, key, s.now())
	if db.IsUniqueViolation(err) {
		return models.Group{}, apperr.New(apperr.KindDuplicate, "group %q already exists in category %q", name, cat.Name)
	}
	if err != nil {
		return models.Group{}, errors.Wrap(err, "failed to insert group")
	}

	logger.Logger.Infow("group created", "group_id", g.ID, "category_id", cat.ID, "name", g.Name)
	return g, nil
}

func (s *Service) RenameGroup(ctx context.Context, id, name string) (models.Group, error) {
	name, key, err := cleanName("group", name)
	if err != nil {
		return models.Group{}, err
	}

	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return models.Group{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE asset_group SET name = $1, name_key = $2 WHERE id = $3
	`, name, key, id)
	if db.IsUniqueViolation(err) {
		return models.Group{}, apperr.New(apperr.KindDuplicate, "group %q already exists in its category", name)
	}
	if err != nil {
		return models.Group{}, errors.Wrap(err, "failed to rename group")
	}

	logger.Logger.Infow("group renamed", "group_id", id, "name", name)
	g.Name = name
	return g, nil
}

func (s *Service) GetGroup(ctx context.Context, id string) (models.Group, error) {
	var g models.Group
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, name FROM asset_group WHERE id = $1
	`, id).Scan(&g.ID, &g.CategoryID, &g.Name)
	if err == sql.ErrNoRows {
		return models.Group{}, apperr.NotFound("group", id)
	}
	if err != nil {
		return models.Group{}, errors.Wrap(err, "failed to query group")
	}
	return g, nil
}

// ListGroups returns all groups, or only those of categoryID when it is set.
func (s *Service) ListGroups(ctx context.Context, categoryID string) ([]models.Group, error) {
	query := `SELECT id, category_id, name FROM asset_group`
	var args []interface{}
	if categoryID != "" {
		query += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY name_key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list groups")
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.CategoryID, &g.Name); err != nil {
			return nil, errors.Wrap(err, "failed to scan group")
		}
		groups = append(groups, g)
	}
	return groups, errors.Wrap(rows.Err(), "failed to list groups")
}

// DeleteGroup removes the group with its fields, entities and entries.
func (s *Service) DeleteGroup(ctx context.Context, id string) (models.DeleteResult, error) {
	res, err := db.DeleteByID(ctx, s.db, "asset_group", id)
	if err == nil {
		logger.Logger.Infow("group deleted", "group_id", id, "result", res)
	}
	return res, err
}

// ResolveGroup finds a group by name across all categories.
func (s *Service) ResolveGroup(ctx context.Context, name string) (models.Group, error) {
	return ResolveGroup(ctx, s.db, name)
}

// ResolveGroup is the Querier form of Service.ResolveGroup. A name used by
// groups in two different categories is rejected as ambiguous.
func ResolveGroup(ctx context.Context, q db.Querier, name string) (models.Group, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, category_id, name FROM asset_group WHERE name_key = $1 ORDER BY created_at
	`, NormalizeName(name))
	if err != nil {
		return models.Group{}, errors.Wrap(err, "failed to query group")
	}
	defer rows.Close()

	var found []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.CategoryID, &g.Name); err != nil {
			return models.Group{}, errors.Wrap(err, "failed to scan group")
		}
		found = append(found, g)
	}
	if err := rows.Err(); err != nil {
		return models.Group{}, errors.Wrap(err, "failed to query group")
	}

	switch len(found) {
	case 0:
		return models.Group{}, apperr.NotFound("group", name)
	case 1:
		return found[0], nil
	}
	return models.Group{}, errors.WithHint(
		apperr.New(apperr.KindInvalid, "group name %q is used in %d categories", name, len(found)),
		"rename one of the groups or address it by id",
	)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/db"
	"github.com/danielhkuo/fieldbook/logger"
	"github.com/danielhkuo/fieldbook/models"
	"github.com/google/uuid"
)

// Service owns categories, groups, fields and enum options.
type Service struct {
	db  *sql.DB
	now func() time.Time
}

func NewService(conn *sql.DB) *Service {
	return &Service{db: conn, now: time.Now}
}

// NormalizeName folds case and collapses runs of whitespace and underscores
// to a single space. "  Roma_Tomatoes " and "roma tomatoes" are the same name.
func NormalizeName(s string) string {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return unicode.IsSpace(r) || r == '_'
	})
	return strings.Join(parts, " ")
}

// cleanName trims a display name and rejects names that normalise to nothing.
func cleanName(what, name string) (string, string, error) {
	name = strings.TrimSpace(name)
	key := NormalizeName(name)
	if key == "" {
		return "", "", apperr.New(apperr.KindInvalid, "%s name is required", what)
	}
	return name, key, nil
}

// Categories

// CreateCategory fails with Duplicate when an equivalent name exists.
func (s *Service) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	name, key, err := cleanName("category", name)
	if err != nil {
		return models.Category{}, err
	}

	cat := models.Category{ID: uuid.NewString(), Name: name}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO category (id, name, name_key, created_at)
		VALUES ($1, $2, $3, $4)
	`, cat.ID, cat.Name, key, s.now())
	if db.IsUniqueViolation(err) {
		return models.Category{}, apperr.New(apperr.KindDuplicate, "category %q already exists", name)
	}
	if err != nil {
		return models.Category{}, errors.Wrap(err, "failed to insert category")
	}

	logger.Logger.Infow("category created", "category_id", cat.ID, "name", cat.Name)
	return cat, nil
}

func (s *Service) RenameCategory(ctx context.Context, id, name string) (models.Category, error) {
	name, key, err := cleanName("category", name)
	if err != nil {
		return models.Category{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE category SET name = $1, name_key = $2 WHERE id = $3
	`, name, key, id)
	if db.IsUniqueViolation(err) {
		return models.Category{}, apperr.New(apperr.KindDuplicate, "category %q already exists", name)
	}
	if err != nil {
		return models.Category{}, errors.Wrap(err, "failed to rename category")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Category{}, apperr.NotFound("category", id)
	}

	logger.Logger.Infow("category renamed", "category_id", id, "name", name)
	return models.Category{ID: id, Name: name}, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM category ORDER BY name_key`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	defer rows.Close()

	cats := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, errors.Wrap(err, "failed to scan category")
		}
		cats = append(cats, c)
	}
	return cats, errors.Wrap(rows.Err(), "failed to list categories")
}

// DeleteCategory removes the category and everything below it.
func (s *Service) DeleteCategory(ctx context.Context, id string) (models.DeleteResult, error) {
	res, err := db.DeleteByID(ctx, s.db, "category", id)
	if err == nil {
		logger.Logger.Infow("category deleted", "category_id", id, "result", res)
	}
	return res, err
}

func categoryByName(ctx context.Context, q db.Querier, name string) (models.Category, error) {
	var c models.Category
	err := q.QueryRowContext(ctx, `
		SELECT id, name FROM category WHERE name_key = $1
	`, NormalizeName(name)).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return models.Category{}, apperr.NotFound("category", name)
	}
	if err != nil {
		return models.Category{}, errors.Wrap(err, "failed to query category")
	}
	return c, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package query

import (
	"context"
	"database/sql"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/catalog"
	"github.com/danielhkuo/fieldbook/dsl"
	"github.com/danielhkuo/fieldbook/models"
	"github.com/danielhkuo/fieldbook/store"
	"golang.org/x/sync/errgroup"
)

// Engine rebuilds per-entity attribute views from the pivot tables and
// filters them by predicate.
type Engine struct {
	db      *sql.DB
	catalog *catalog.Service
	store   *store.Store
}

func NewEngine(conn *sql.DB, cat *catalog.Service, st *store.Store) *Engine {
	return &Engine{db: conn, catalog: cat, store: st}
}

// Predicate is a filter resolved against a real field.
type Predicate struct {
	Field    models.Field
	Operator dsl.Operator
	Value    string
}

// QueryEntities returns the entities of a group with all their attributes.
// With a predicate only matching entities are returned, and matching none
// is a NoResults error. Without one an empty group is an empty list.
func (e *Engine) QueryEntities(ctx context.Context, groupID string, pred *Predicate) ([]models.EntityAttributes, error) {
	ids, err := e.store.ListEntityIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return e.merge(ctx, groupID, ids, nil)
	}

	matched, err := e.match(ctx, *pred)
	if err != nil {
		return nil, err
	}
	var keep []string
	for _, id := range ids {
		if matched[id] {
			keep = append(keep, id)
		}
	}
	if len(keep) == 0 {
		return nil, apperr.New(apperr.KindNoResults, "no entities where %s %s %q",
			pred.Field.Name, pred.Operator, pred.Value)
	}
	return e.merge(ctx, groupID, keep, nil)
}

// GetEntity returns one entity with all its attributes.
func (e *Engine) GetEntity(ctx context.Context, id string) (models.EntityAttributes, error) {
	ent, err := e.store.GetEntity(ctx, id)
	if err != nil {
		return models.EntityAttributes{}, err
	}
	out, err := e.merge(ctx, ent.GroupID, []string{id}, []string{id})
	if err != nil {
		return models.EntityAttributes{}, err
	}
	return out[0], nil
}

// ListAllEntities returns every entity of every group with its attributes,
// oldest first.
func (e *Engine) ListAllEntities(ctx context.Context) ([]models.EntityAttributes, error) {
	ents, err := e.store.ListEntities(ctx)
	if err != nil {
		return nil, err
	}

	var order []string
	byGroup := map[string][]string{}
	for _, ent := range ents {
		if _, ok := byGroup[ent.GroupID]; !ok {
			order = append(order, ent.GroupID)
		}
		byGroup[ent.GroupID] = append(byGroup[ent.GroupID], ent.ID)
	}

	views := make(map[string]models.EntityAttributes, len(ents))
	for _, gid := range order {
		merged, err := e.merge(ctx, gid, byGroup[gid], nil)
		if err != nil {
			return nil, err
		}
		for _, m := range merged {
			views[m.EntityID] = m
		}
	}

	out := make([]models.EntityAttributes, len(ents))
	for i, ent := range ents {
		out[i] = views[ent.ID]
	}
	return out, nil
}

// merge reads the three pivots concurrently and folds them into one
// attribute map per entity, in the order of ids. Rows of entities not in ids
// are dropped. filter restricts the reads to those entities and is bound as
// query parameters, so it must stay small; nil reads the whole group.
func (e *Engine) merge(ctx context.Context, groupID string, ids, filter []string) ([]models.EntityAttributes, error) {
	out := make([]models.EntityAttributes, len(ids))
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		out[i] = models.EntityAttributes{
			EntityID:   id,
			GroupID:    groupID,
			Attributes: map[string]models.Attribute{},
		}
		index[id] = i
	}
	if len(ids) == 0 {
		return out, nil
	}

	results := make([][]store.Row, len(store.Pivots))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range store.Pivots {
		g.Go(func() error {
			rows, err := e.store.ScanPivot(gctx, p, groupID, filter)
			results[i] = rows
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rows := range results {
		for _, r := range rows {
			i, ok := index[r.EntityID]
			if !ok {
				continue
			}
			out[i].Attributes[r.FieldName] = models.Attribute{
				Value:   r.Value,
				Type:    r.Type,
				Date:    r.Date,
				EntryID: r.EntryID,
			}
		}
	}
	return out, nil
}

var numberOps = map[dsl.Operator]string{
	dsl.OpEq:  "=",
	dsl.OpNe:  "<>",
	dsl.OpGt:  ">",
	dsl.OpGte: ">=",
	dsl.OpLt:  "<",
	dsl.OpLte: "<=",
}

// match returns the set of entity ids whose value for the predicate's field
// satisfies it. Operator legality is checked against the field's type here.
func (e *Engine) match(ctx context.Context, p Predicate) (map[string]bool, error) {
	f := p.Field
	var (
		cond string
		arg  interface{}
	)

	switch f.ValueType {
	case models.TypeNumber:
		op, ok := numberOps[p.Operator]
		if !ok {
			return nil, invalidOperator(f, p.Operator, "==, !=, >, >=, <, <=")
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, apperr.New(apperr.KindCoercion, "field %q is a number; %q is not", f.Name, p.Value)
		}
		cond, arg = "e.value "+op+" $2", n

	case models.TypeBoolean:
		if p.Operator != dsl.OpEq {
			return nil, invalidOperator(f, p.Operator, "==")
		}
		switch strings.ToLower(strings.TrimSpace(p.Value)) {
		case "true":
			arg = true
		case "false":
			arg = false
		default:
			return nil, apperr.New(apperr.KindCoercion, "field %q is a boolean; compare it with true or false", f.Name)
		}
		cond = "e.value = $2"

	case models.TypeText, models.TypeEnum:
		switch p.Operator {
		case dsl.OpIs:
			cond, arg = textColumn+" = $2", TextKey(p.Value)
		case dsl.OpLike:
			cond, arg = textColumn+" LIKE $2 ESCAPE '!'", "%"+escapeLike(TextKey(p.Value))+"%"
		default:
			return nil, invalidOperator(f, p.Operator, "is, like")
		}

	default:
		return nil, apperr.New(apperr.KindInvalidType, "field %q has unknown value type %q", f.Name, f.ValueType)
	}

	rows, err := e.db.QueryContext(ctx, `
		SELECT DISTINCT e.entity_id FROM `+string(store.PivotFor(f.ValueType))+` e
		WHERE e.field_id = $1 AND `+cond, f.ID, arg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to match entities")
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan entity id")
		}
		ids[id] = true
	}
	return ids, errors.Wrap(rows.Err(), "failed to match entities")
}

// textColumn is the stored text folded the same way as TextKey.
const textColumn = "LOWER(REPLACE(TRIM(e.value), '_', ' '))"

// TextKey folds text for is/like comparison: trimmed, lower-cased, with
// underscores read as spaces. "Roma_Tomato" is "roma tomato".
func TextKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func invalidOperator(f models.Field, op dsl.Operator, allowed string) error {
	return errors.WithHintf(
		apperr.New(apperr.KindInvalidOperator, "operator %s cannot be used on %s field %q", op, f.ValueType, f.Name),
		"%s fields accept %s", f.ValueType, allowed,
	)
}

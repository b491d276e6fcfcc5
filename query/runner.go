// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package query

import (
	"context"
	"strings"

	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/dsl"
	"github.com/danielhkuo/fieldbook/logger"
	"github.com/danielhkuo/fieldbook/models"
)

// RunDSL parses text, resolves its group and field by name and runs it.
// Errors carry text as the attempted query.
func (e *Engine) RunDSL(ctx context.Context, text string) (models.QueryResponse, error) {
	text = strings.TrimSpace(text)

	q, err := dsl.Parse(text)
	if err != nil {
		return models.QueryResponse{}, err
	}

	resp, err := e.run(ctx, q, text)
	if err != nil {
		logger.Logger.Infow("dsl query failed", "dsl", text, "kind", apperr.KindOf(err))
		return models.QueryResponse{}, apperr.WithQuery(err, text)
	}
	return resp, nil
}

func (e *Engine) run(ctx context.Context, q dsl.Query, text string) (models.QueryResponse, error) {
	group, err := e.catalog.ResolveGroup(ctx, q.Group)
	if err != nil {
		return models.QueryResponse{}, err
	}

	var pred *Predicate
	if !q.IsBare() {
		f, err := e.catalog.FieldByName(ctx, group.ID, q.Field)
		if err != nil {
			return models.QueryResponse{}, err
		}
		pred = &Predicate{Field: f, Operator: q.Operator, Value: q.Value}
	}

	entities, err := e.QueryEntities(ctx, group.ID, pred)
	if err != nil {
		return models.QueryResponse{}, err
	}

	logger.Logger.Infow("dsl query", "dsl", text, "group_id", group.ID, "entities", len(entities))
	return models.QueryResponse{
		DSL:       text,
		GroupID:   group.ID,
		GroupName: group.Name,
		Entities:  entities,
	}, nil
}

// QueryGroup runs a query against a group id with discrete filter
// parameters. An empty fieldName lists the whole group. The response's DSL
// is the equivalent query text.
func (e *Engine) QueryGroup(ctx context.Context, groupID, fieldName, operator, value string) (models.QueryResponse, error) {
	group, err := e.catalog.GetGroup(ctx, groupID)
	if err != nil {
		return models.QueryResponse{}, err
	}

	q := dsl.Query{Group: strings.ReplaceAll(strings.ToLower(group.Name), " ", "_")}
	var pred *Predicate
	if strings.TrimSpace(fieldName) != "" {
		op, ok := parseOperator(operator)
		if !ok {
			return models.QueryResponse{}, apperr.New(apperr.KindInvalidOperator, "unknown operator %q", operator)
		}
		f, err := e.catalog.FieldByName(ctx, group.ID, fieldName)
		if err != nil {
			return models.QueryResponse{}, err
		}
		q.Field, q.Operator, q.Value = strings.ReplaceAll(strings.ToLower(f.Name), " ", "_"), op, value
		pred = &Predicate{Field: f, Operator: op, Value: value}
	}
	text := q.String()

	entities, err := e.QueryEntities(ctx, group.ID, pred)
	if err != nil {
		return models.QueryResponse{}, apperr.WithQuery(err, text)
	}
	return models.QueryResponse{
		DSL:       text,
		GroupID:   group.ID,
		GroupName: group.Name,
		Entities:  entities,
	}, nil
}

func parseOperator(s string) (dsl.Operator, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, op := range dsl.Operators {
		if string(op) == s {
			return op, true
		}
	}
	return "", false
}

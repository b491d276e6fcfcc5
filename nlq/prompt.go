// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package nlq

import (
	"context"
	"sort"
	"strings"

	"github.com/danielhkuo/fieldbook/models"
	"golang.org/x/sync/errgroup"
)

const basePrompt = `You translate questions about farm records into a small query language.
Return only the query, on a single line, with no explanation, quotes around the
whole query, code fences or punctuation.

Records are organised into categories and groups. Produce is a category and
lettuce a group within it. Every group has its own fields.

Query format:
    group.field OP value
    group            (every record of the group)

Group and field names are written in lowercase with spaces replaced by
underscores. Quote text values with single quotes.

Operators by field type:
    Boolean: == with true or false
    Text and Enum: is (exact match), like (partial match)
    Number: ==, !=, >, >=, <, <=

Examples:
    "Cows that were born weighing more than 200 pounds" -> cows.born_weight > 200
    "lettuce where the amount is at most 100" -> lettuce.amount <= 100
    "roma tomatoes with amount 75" -> roma_tomatoes.amount == 75
    "cows that have a covid vaccine" -> cows.covid_vax == true
    "Lettuce" -> lettuce
    "tomatoes with destination internal" -> tomatoes.destination is 'Internal'
    "Cows with names containing Bess" -> cows.name like 'Bess'
    "Cows that are not 5 years old" -> cows.age != 5

Groups and fields must come from the context below, even when the question
spells them differently.`

// SchemaLister lists the current schema. *catalog.Service satisfies it.
type SchemaLister interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListGroups(ctx context.Context, categoryID string) ([]models.Group, error)
	ListFields(ctx context.Context, groupID string) ([]models.Field, error)
}

// SchemaContext is the live listing of names given to the model.
type SchemaContext struct {
	Categories []string
	Groups     []string
	// Fields are "group.field (Type)".
	Fields []string
}

// LoadContext reads the schema and renders names the way queries spell
// them: lowercase with underscores.
func LoadContext(ctx context.Context, schema SchemaLister) (SchemaContext, error) {
	var (
		cats   []models.Category
		groups []models.Group
		fields []models.Field
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { cats, err = schema.ListCategories(gctx); return })
	g.Go(func() (err error) { groups, err = schema.ListGroups(gctx, ""); return })
	g.Go(func() (err error) { fields, err = schema.ListFields(gctx, ""); return })
	if err := g.Wait(); err != nil {
		return SchemaContext{}, err
	}

	var sc SchemaContext
	groupNames := make(map[string]string, len(groups))
	for _, c := range cats {
		sc.Categories = append(sc.Categories, ident(c.Name))
	}
	for _, gr := range groups {
		groupNames[gr.ID] = ident(gr.Name)
		sc.Groups = append(sc.Groups, ident(gr.Name))
	}
	for _, f := range fields {
		sc.Fields = append(sc.Fields, groupNames[f.GroupID]+"."+ident(f.Name)+" ("+string(f.ValueType)+")")
	}
	sort.Strings(sc.Groups)
	sort.Strings(sc.Fields)
	return sc, nil
}

// BuildPrompt appends the schema listing to the base instructions.
func BuildPrompt(sc SchemaContext) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nContext Data:\n")
	b.WriteString("Categories: " + strings.Join(sc.Categories, ", ") + "\n")
	b.WriteString("Groups: " + strings.Join(sc.Groups, ", ") + "\n")
	b.WriteString("Fields: " + strings.Join(sc.Fields, ", "))
	return b.String()
}

func ident(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(name, "_", " "))), "_")
}

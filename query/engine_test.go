package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/danielhkuo/fieldbook/apperr"
	"github.com/danielhkuo/fieldbook/catalog"
	"github.com/danielhkuo/fieldbook/dsl"
	"github.com/danielhkuo/fieldbook/models"
	"github.com/danielhkuo/fieldbook/store"
	"github.com/danielhkuo/fieldbook/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine  *Engine
	catalog *catalog.Service
	store   *store.Store
	group   models.Group
	fields  map[string]models.Field
	ids     []string
}

// setup creates a "Roma Tomatoes" group with three entities:
//
//	weight  organic  variety        grade
//	100     true     San_Marzano    A
//	250     false    cherry red     B
//	175     -        Plum           A
func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	cat := catalog.NewService(conn)
	st := store.New(conn)

	_, err := cat.CreateCategory(ctx, "Produce")
	require.NoError(t, err)
	g, err := cat.CreateGroup(ctx, "produce", "Roma Tomatoes")
	require.NoError(t, err)
	_, err = cat.CreateGroup(ctx, "produce", "Empty")
	require.NoError(t, err)

	fields := map[string]models.Field{}
	for name, vt := range map[string]string{"weight": "Number", "organic": "Boolean", "variety": "Text"} {
		f, err := cat.CreateField(ctx, models.CreateFieldRequest{GroupName: "roma tomatoes", Name: name, ValueType: vt})
		require.NoError(t, err)
		fields[name] = f
	}
	grade, err := cat.CreateField(ctx, models.CreateFieldRequest{
		GroupName: "roma tomatoes", Name: "grade", ValueType: "Enum", EnumOptions: []string{"A", "B"},
	})
	require.NoError(t, err)
	fields["grade"] = grade

	rows := [][]models.EntryInput{
		{
			{FieldID: fields["weight"].ID, Value: 100},
			{FieldID: fields["organic"].ID, Value: true},
			{FieldID: fields["variety"].ID, Value: "San_Marzano"},
			{FieldID: fields["grade"].ID, Value: "A"},
		},
		{
			{FieldID: fields["weight"].ID, Value: 250},
			{FieldID: fields["organic"].ID, Value: false},
			{FieldID: fields["variety"].ID, Value: "cherry red"},
			{FieldID: fields["grade"].ID, Value: "B"},
		},
		{
			{FieldID: fields["weight"].ID, Value: "175"},
			{FieldID: fields["variety"].ID, Value: "Plum"},
			{FieldID: fields["grade"].ID, Value: "A"},
		},
	}
	var ids []string
	for _, entries := range rows {
		resp, err := st.CreateEntityWithEntries(ctx, models.CreateEntityRequest{GroupName: "roma_tomatoes", Entries: entries})
		require.NoError(t, err)
		require.Empty(t, resp.FailedEntries)
		ids = append(ids, resp.EntityID)
	}

	return fixture{
		engine:  NewEngine(conn, cat, st),
		catalog: cat,
		store:   st,
		group:   g,
		fields:  fields,
		ids:     ids,
	}
}

func entityIDs(ents []models.EntityAttributes) []string {
	out := make([]string, len(ents))
	for i, e := range ents {
		out[i] = e.EntityID
	}
	return out
}

func TestQueryEntitiesWithoutPredicate(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	ents, err := fx.engine.QueryEntities(ctx, fx.group.ID, nil)
	require.NoError(t, err)
	require.Len(t, ents, 3)
	assert.ElementsMatch(t, fx.ids, entityIDs(ents))

	for _, e := range ents {
		assert.Equal(t, fx.group.ID, e.GroupID)
		if e.EntityID == fx.ids[2] {
			assert.Len(t, e.Attributes, 3, "sparse entity has no organic value")
			assert.NotContains(t, e.Attributes, "organic")
			assert.Equal(t, models.NumberValue(175), e.Attributes["weight"].Value)
			assert.Equal(t, models.TypeEnum, e.Attributes["grade"].Type)
			assert.NotEmpty(t, e.Attributes["grade"].EntryID)
			assert.NotEmpty(t, e.Attributes["grade"].Date)
		} else {
			assert.Len(t, e.Attributes, 4)
		}
	}
}

func TestQueryEntitiesPredicates(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	tests := []struct {
		field string
		op    string
		value string
		want  []int
	}{
		{"weight", ">=", "175", []int{1, 2}},
		{"weight", ">", "175", []int{1}},
		{"weight", "<", "175", []int{0}},
		{"weight", "<=", "100", []int{0}},
		{"weight", "==", "250", []int{1}},
		{"weight", "!=", "250", []int{0, 2}},
		{"organic", "==", "true", []int{0}},
		{"organic", "==", "FALSE", []int{1}},
		{"variety", "is", "san marzano", []int{0}},
		{"variety", "is", "Cherry_Red", []int{1}},
		{"variety", "like", "mar", []int{0}},
		{"variety", "like", "r", []int{0, 1}},
		{"grade", "is", "a", []int{0, 2}},
		{"grade", "like", "B", []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.field+" "+tt.op+" "+tt.value, func(t *testing.T) {
			resp, err := fx.engine.QueryGroup(ctx, fx.group.ID, tt.field, tt.op, tt.value)
			require.NoError(t, err)

			var want []string
			for _, i := range tt.want {
				want = append(want, fx.ids[i])
			}
			assert.ElementsMatch(t, want, entityIDs(resp.Entities))
			for _, e := range resp.Entities {
				assert.NotEmpty(t, e.Attributes, "matched entities carry all attributes")
			}
		})
	}
}

func TestQueryEntitiesOperatorLegality(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	tests := []struct {
		field string
		op    string
		value string
		kind  apperr.Kind
	}{
		{"organic", ">", "true", apperr.KindInvalidOperator},
		{"organic", "is", "true", apperr.KindInvalidOperator},
		{"organic", "==", "yes", apperr.KindCoercion},
		{"variety", "==", "Plum", apperr.KindInvalidOperator},
		{"variety", ">", "Plum", apperr.KindInvalidOperator},
		{"grade", "!=", "A", apperr.KindInvalidOperator},
		{"weight", "like", "1", apperr.KindInvalidOperator},
		{"weight", ">", "heavy", apperr.KindCoercion},
		{"weight", "~", "1", apperr.KindInvalidOperator},
		{"colour", "is", "red", apperr.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.field+" "+tt.op, func(t *testing.T) {
			resp, err := fx.engine.QueryGroup(ctx, fx.group.ID, tt.field, tt.op, tt.value)
			assert.True(t, apperr.Is(err, tt.kind), "expected %s, got %v", tt.kind, err)
			assert.Empty(t, resp.Entities)
		})
	}
}

func TestQueryResultDistinctness(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	_, err := fx.engine.RunDSL(ctx, "cows")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "unresolved group: %v", err)

	_, err = fx.engine.RunDSL(ctx, "roma_tomatoes.weight > 1000")
	assert.True(t, apperr.Is(err, apperr.KindNoResults), "no match: %v", err)

	resp, err := fx.engine.RunDSL(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, resp.Entities)
	assert.Empty(t, resp.Entities)
}

func TestRunDSL(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	resp, err := fx.engine.RunDSL(ctx, "  roma_tomatoes.variety like 'marz' ")
	require.NoError(t, err)
	assert.Equal(t, "roma_tomatoes.variety like 'marz'", resp.DSL)
	assert.Equal(t, fx.group.ID, resp.GroupID)
	assert.Equal(t, "Roma Tomatoes", resp.GroupName)
	require.Len(t, resp.Entities, 1)
	assert.Equal(t, fx.ids[0], resp.Entities[0].EntityID)

	resp, err = fx.engine.RunDSL(ctx, "roma_tomatoes")
	require.NoError(t, err)
	assert.Len(t, resp.Entities, 3)

	for text, kind := range map[string]apperr.Kind{
		"roma tomatoes weight":          apperr.KindParse,
		"roma_tomatoes.colour is 'red'": apperr.KindNotFound,
		"roma_tomatoes.organic > 1":     apperr.KindInvalidOperator,
		"roma_tomatoes.weight > 1000":   apperr.KindNoResults,
	} {
		_, err := fx.engine.RunDSL(ctx, text)
		e, ok := apperr.As(err)
		require.True(t, ok, text)
		assert.Equal(t, kind, e.Kind, text)
		assert.Equal(t, text, e.Query, "error echoes the attempted query")
	}
}

func TestQueryGroupEchoesDSL(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	resp, err := fx.engine.QueryGroup(ctx, fx.group.ID, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "roma_tomatoes", resp.DSL)
	assert.Len(t, resp.Entities, 3)

	resp, err = fx.engine.QueryGroup(ctx, fx.group.ID, "Variety", "is", "cherry red")
	require.NoError(t, err)
	assert.Equal(t, "roma_tomatoes.variety is 'cherry red'", resp.DSL)

	_, err = fx.engine.QueryGroup(ctx, "missing", "", "", "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = fx.engine.QueryGroup(ctx, fx.group.ID, "weight", ">", "9999")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNoResults, e.Kind)
	assert.Equal(t, "roma_tomatoes.weight > 9999", e.Query)
}

func TestQueryEntitiesLargeMatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping bulk insert in short mode")
	}
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	cat := catalog.NewService(conn)
	engine := NewEngine(conn, cat, store.New(conn))

	_, err := cat.CreateCategory(ctx, "Livestock")
	require.NoError(t, err)
	g, err := cat.CreateGroup(ctx, "livestock", "Hens")
	require.NoError(t, err)
	weight, err := cat.CreateField(ctx, models.CreateFieldRequest{GroupName: "hens", Name: "weight", ValueType: "Number"})
	require.NoError(t, err)

	// More matches than SQLite accepts as bound parameters in one statement.
	const n = 40000
	tx, err := conn.BeginTx(ctx, nil)
	require.NoError(t, err)
	insEntity, err := tx.PrepareContext(ctx, `INSERT INTO entity (id, group_id, created_at) VALUES ($1, $2, $3)`)
	require.NoError(t, err)
	insEntry, err := tx.PrepareContext(ctx, `
		INSERT INTO entry_number (id, entity_id, field_id, value, entry_date) VALUES ($1, $2, $3, $4, $5)`)
	require.NoError(t, err)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("hen-%05d", i)
		_, err := insEntity.ExecContext(ctx, id, g.ID, created)
		require.NoError(t, err)
		_, err = insEntry.ExecContext(ctx, "w-"+id, id, weight.ID, float64(i%7), "2024-05-01")
		require.NoError(t, err)
	}
	require.NoError(t, insEntity.Close())
	require.NoError(t, insEntry.Close())
	require.NoError(t, tx.Commit())

	ents, err := engine.QueryEntities(ctx, g.ID, &Predicate{Field: weight, Operator: dsl.OpGte, Value: "0"})
	require.NoError(t, err)
	require.Len(t, ents, n)
	assert.Equal(t, "hen-00000", ents[0].EntityID)
	assert.Equal(t, models.NumberValue(6), ents[6].Attributes["weight"].Value)

	ents, err = engine.QueryEntities(ctx, g.ID, &Predicate{Field: weight, Operator: dsl.OpEq, Value: "3"})
	require.NoError(t, err)
	assert.Len(t, ents, (n+3)/7)
	for _, e := range ents {
		assert.Equal(t, models.NumberValue(3), e.Attributes["weight"].Value)
	}
}

func TestGetEntity(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	ent, err := fx.engine.GetEntity(ctx, fx.ids[1])
	require.NoError(t, err)
	assert.Equal(t, fx.ids[1], ent.EntityID)
	assert.Equal(t, models.BoolValue(false), ent.Attributes["organic"].Value)
	assert.Equal(t, models.TextValue("cherry red"), ent.Attributes["variety"].Value)

	_, err = fx.engine.GetEntity(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTextKey(t *testing.T) {
	assert.Equal(t, "san marzano", TextKey("  San_Marzano "))
	assert.Equal(t, "100%!", TextKey("100%!"))
	assert.Equal(t, "100!%!!", escapeLike(TextKey("100%!")))
}

func TestDeleteGroupCascadesFromQueries(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	res, err := fx.catalog.DeleteGroup(ctx, fx.group.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Deleted, res)

	_, err = fx.engine.RunDSL(ctx, "roma_tomatoes")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = fx.engine.GetEntity(ctx, fx.ids[0])
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListAllEntities(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	g, err := fx.catalog.CreateGroup(ctx, "produce", "Basil")
	require.NoError(t, err)
	leaves, err := fx.catalog.CreateField(ctx, models.CreateFieldRequest{GroupName: "basil", Name: "leaves", ValueType: "Number"})
	require.NoError(t, err)
	resp, err := fx.store.CreateEntityWithEntries(ctx, models.CreateEntityRequest{
		GroupName: "basil",
		Entries:   []models.EntryInput{{FieldID: leaves.ID, Value: 12}},
	})
	require.NoError(t, err)

	ents, err := fx.engine.ListAllEntities(ctx)
	require.NoError(t, err)
	require.Len(t, ents, 4)
	assert.ElementsMatch(t, append(append([]string{}, fx.ids...), resp.EntityID), entityIDs(ents))

	for _, e := range ents {
		if e.EntityID == resp.EntityID {
			assert.Equal(t, g.ID, e.GroupID)
			assert.Equal(t, models.NumberValue(12), e.Attributes["leaves"].Value)
			assert.Len(t, e.Attributes, 1)
			continue
		}
		assert.Equal(t, fx.group.ID, e.GroupID)
		assert.NotContains(t, e.Attributes, "leaves")
	}

	_, err = fx.catalog.DeleteGroup(ctx, g.ID)
	require.NoError(t, err)
	ents, err = fx.engine.ListAllEntities(ctx)
	require.NoError(t, err)
	assert.Len(t, ents, 3)
}

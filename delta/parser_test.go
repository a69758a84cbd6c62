package delta

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHostLayout(t *testing.T) {
	document := `{
		"properties": {
			"containers": {"properties": {
				"added": {"items": [{"properties": {"shop": {"compMod": {"created": true}, "characterSet": "utf8mb4"}}}]}
			}},
			"entities": {"properties": {
				"modified": {"items": [
					{"properties": {"orders": {"compMod": {"modified": true}}}},
					{"properties": {"users": {"compMod": {"modified": true}}}}
				]}
			}}
		}
	}`

	model, err := Parse([]byte(document))
	require.NoError(t, err)

	require.Len(t, model.Containers.Added, 1)
	assert.Equal(t, "shop", model.Containers.Added[0].Name)
	assert.Equal(t, "shop", model.Containers.Added[0].Descriptor.Name)
	assert.Equal(t, "utf8mb4", model.Containers.Added[0].Descriptor.CharacterSet)
	assert.Equal(t, Created, model.Containers.Added[0].Transition)

	require.Len(t, model.Entities.Modified, 2)
	assert.Equal(t, "orders", model.Entities.Modified[0].Name)
	assert.Equal(t, "users", model.Entities.Modified[1].Name)
	assert.Equal(t, Modified, model.Entities.Modified[1].Transition)

	assert.Empty(t, model.Views.Added)
	assert.Empty(t, model.Entities.Deleted)
	assert.Equal(t, 0, model.Views.Len())
}

func TestParseCompactLayout(t *testing.T) {
	document := `{
		"entities": {
			"added": [{"T1": {
				"compMod": {"created": true},
				"columns": [{"name": "id", "type": "int"}, {"name": "note", "type": "text"}]
			}}]
		}
	}`

	model, err := Parse([]byte(document))
	require.NoError(t, err)

	require.Len(t, model.Entities.Added, 1)
	table := model.Entities.Added[0].Descriptor
	assert.Equal(t, "T1", table.Name)
	assert.True(t, table.CompMod.Created)
	require.Len(t, table.Columns, 2)
	assert.Equal(t, "id", table.Columns[0].Name)
	assert.Equal(t, "note", table.Columns[1].Name)
}

func TestParseKeepsMemberOrder(t *testing.T) {
	document := `{"entities": {"added": {"items": {
		"zeta": {"compMod": {"created": true}, "properties": {"b": {"type": "int"}, "a": {"type": "int"}}},
		"alpha": {"compMod": {"created": true}}
	}}}}`

	model, err := Parse([]byte(document))
	require.NoError(t, err)

	require.Len(t, model.Entities.Added, 2)
	assert.Equal(t, "zeta", model.Entities.Added[0].Name)
	assert.Equal(t, "alpha", model.Entities.Added[1].Name)

	columns := model.Entities.Added[0].Descriptor.Columns
	require.Len(t, columns, 2)
	assert.Equal(t, "b", columns[0].Name)
	assert.Equal(t, "a", columns[1].Name)
}

func TestParseTableName(t *testing.T) {
	document := `{"entities": {"added": [
		{"key1": {"collectionName": "by_collection", "code": "by_code"}},
		{"key2": {"code": "by_code"}},
		{"key3": {}}
	]}}`

	model, err := Parse([]byte(document))
	require.NoError(t, err)

	names := []string{}
	for _, item := range model.Entities.Added {
		names = append(names, item.Descriptor.Name)
	}
	assert.Equal(t, []string{"by_collection", "by_code", "key3"}, names)
}

func TestParseSkipsMalformedDescriptors(t *testing.T) {
	document := `{"entities": {"added": [
		{"broken": "not an object"},
		{"typed": {"temporary": "yes", "properties": {"id": {"type": "int"}}}},
		{"ok": {"compMod": {"created": true}}}
	]}}`

	model, err := Parse([]byte(document))
	require.NoError(t, err)

	require.Len(t, model.Entities.Added, 1)
	assert.Equal(t, "ok", model.Entities.Added[0].Name)
}

func TestParseSkipsMalformedElements(t *testing.T) {
	document := `{"entities": {"added": [{"users": {
		"compMod": {
			"created": true,
			"keys": {"old": [{"name": "uk_old", "columns": "email"}], "new": [{"name": "uk_new", "keyType": "UNIQUE KEY"}]}
		},
		"properties": {
			"id": {"type": "int"},
			"email": {"type": "varchar", "length": {"nested": true}},
			"name": {"type": "varchar", "length": 64}
		},
		"keys": [
			{"name": "pk", "keyType": "PRIMARY KEY", "columns": [{"name": "id"}]},
			{"name": "uk_bad", "keyType": "UNIQUE KEY", "ignore": "false"}
		],
		"foreignKeys": [
			{"name": "fk_bad", "referencedTable": ["shops"]},
			{"name": "fk_shop", "columns": [{"name": "shop_id"}], "referencedTable": "shops", "referencedColumns": [{"name": "id"}]}
		],
		"checkConstraints": {"name": "not a list"},
		"indexes": [{"name": "idx_name", "columns": [{"name": "name"}]}, 42]
	}}]}}`

	model, err := Parse([]byte(document))
	require.NoError(t, err)
	require.Len(t, model.Entities.Added, 1)

	table := model.Entities.Added[0].Descriptor
	require.Len(t, table.Columns, 2)
	assert.Equal(t, []string{"id", "name"}, []string{table.Columns[0].Name, table.Columns[1].Name})
	require.Len(t, table.Keys, 1)
	assert.Equal(t, "pk", table.Keys[0].Name)
	require.Len(t, table.ForeignKeys, 1)
	assert.Equal(t, "fk_shop", table.ForeignKeys[0].Name)
	assert.Empty(t, table.CheckConstraints)
	require.Len(t, table.Indexes, 1)
	assert.Equal(t, "idx_name", table.Indexes[0].Name)

	require.NotNil(t, table.CompMod.Keys)
	assert.Empty(t, table.CompMod.Keys.Old)
	assert.Equal(t, List[Key]{{Name: "uk_new", KeyType: "UNIQUE KEY"}}, table.CompMod.Keys.New)
}

func TestParseSkipsMalformedArrayColumns(t *testing.T) {
	model, err := Parse([]byte(`{"entities": {"added": [{"t": {
		"columns": [{"name": "id", "type": "int"}, {"name": "bad", "unsigned": "no"}, "junk"]
	}}]}}`))
	require.NoError(t, err)
	require.Len(t, model.Entities.Added, 1)

	columns := model.Entities.Added[0].Descriptor.Columns
	require.Len(t, columns, 1)
	assert.Equal(t, "id", columns[0].Name)
}

func TestParseMissingBuckets(t *testing.T) {
	model, err := Parse([]byte(`{"views": null, "containers": {"added": null}}`))
	require.NoError(t, err)

	assert.Equal(t, 0, model.Containers.Len())
	assert.Equal(t, 0, model.Entities.Len())
	assert.Equal(t, 0, model.Views.Len())
	assert.NotNil(t, model.Containers.Added)
}

func TestParseMalformedDocument(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{name: "empty", document: ""},
		{name: "whitespace", document: "  \n"},
		{name: "null", document: "null"},
		{name: "array", document: `[{"entities": {}}]`},
		{name: "string", document: `"delta"`},
		{name: "invalid JSON", document: `{"entities": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := Parse([]byte(tt.document))
			assert.Nil(t, model)

			var malformed *MalformedInputError
			require.True(t, errors.As(err, &malformed), "unexpected error: %v", err)
			assert.Contains(t, err.Error(), "comparison model not found")
		})
	}
}

func TestResolveViewOverlaysRole(t *testing.T) {
	view, err := ResolveView([]byte(`{
		"name": "v_users",
		"algorithm": "MERGE",
		"compMod": {"created": true},
		"role": {"selectStatement": "SELECT id FROM users", "algorithm": "TEMPTABLE"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "v_users", view.Name)
	assert.Equal(t, "TEMPTABLE", view.Algorithm)
	assert.Equal(t, "SELECT id FROM users", view.SelectStatement)
	assert.True(t, view.CompMod.Created)
}

func TestParseViewName(t *testing.T) {
	document := `{"views": {"added": [
		{"key1": {"code": "v_code", "name": "v_name"}},
		{"key2": {"role": {"name": "v_role"}}},
		{"key3": {}}
	]}}`

	model, err := Parse([]byte(document))
	require.NoError(t, err)

	names := []string{}
	for _, item := range model.Views.Added {
		names = append(names, item.Descriptor.Name)
	}
	assert.Equal(t, []string{"v_code", "v_role", "key3"}, names)
}

func TestFlagsTransition(t *testing.T) {
	assert.Equal(t, Created, Flags{Created: true, Deleted: true, Modified: true}.Transition())
	assert.Equal(t, Deleted, Flags{Deleted: true, Modified: true}.Transition())
	assert.Equal(t, Modified, Flags{Modified: true}.Transition())
	assert.Equal(t, Unchanged, Flags{}.Transition())
	assert.Equal(t, "deleted", Deleted.String())
}

func TestTextAcceptsScalars(t *testing.T) {
	model, err := Parse([]byte(`{"entities": {"added": [{"t": {"properties": {
		"a": {"type": "varchar", "length": 255},
		"b": {"type": "decimal", "precision": "10", "scale": 2},
		"c": {"type": "bool", "default": false}
	}}}]}}`))
	require.NoError(t, err)

	columns := model.Entities.Added[0].Descriptor.Columns
	require.Len(t, columns, 3)
	assert.Equal(t, Text("255"), columns[0].Length)
	assert.Equal(t, Text("10"), columns[1].Precision)
	assert.Equal(t, Text("2"), columns[1].Scale)
	assert.Equal(t, Text("false"), columns[2].Default)
}

func TestColumnRefs(t *testing.T) {
	model, err := Parse([]byte(`{"entities": {"added": [{"t": {"foreignKeys": [
		{"columns": "user_id", "referencedTable": "users", "referencedColumns": [{"name": "id"}]}
	]}}]}}`))
	require.NoError(t, err)

	fks := model.Entities.Added[0].Descriptor.ForeignKeys
	require.Len(t, fks, 1)
	assert.True(t, fks[0].Columns.IsRendered)
	assert.Equal(t, "user_id", fks[0].Columns.Rendered)
	assert.False(t, fks[0].ReferencedColumns.IsRendered)
	assert.Equal(t, []KeyColumn{{Name: "id"}}, fks[0].ReferencedColumns.Columns)

	inactive := ColumnRefs{Columns: []KeyColumn{{Name: "id", Activation: Active(false)}}}
	assert.False(t, inactive.Activated())
	assert.True(t, ColumnRefs{}.Activated())
}

func TestChangeChanged(t *testing.T) {
	var missing *Change[string]
	assert.False(t, missing.Changed())
	assert.False(t, (&Change[string]{Old: "a", New: "a"}).Changed())
	assert.True(t, (&Change[string]{Old: "a", New: "b"}).Changed())
}

func TestTableIsRequired(t *testing.T) {
	table := Table{Required: []string{"id"}}
	assert.True(t, table.IsRequired(ColumnDefinition{Name: "id"}))
	assert.True(t, table.IsRequired(ColumnDefinition{Name: "name", Required: true}))
	assert.False(t, table.IsRequired(ColumnDefinition{Name: "note"}))
}

package schema

import (
	"log/slog"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sqldef/deltadef/delta"
	"github.com/sqldef/deltadef/util"
)

type tableItem = delta.Item[delta.Table]

// Column properties that do not require MODIFY COLUMN when they change.
var ignoreColumnIdentity = cmpopts.IgnoreFields(delta.ColumnDefinition{}, "Name", "Activation")

// alterEntityScripts renders the table phases in order: create, delete, table-level modify, add
// column, delete column, and column-level modify. A table that is created or deleted as a whole
// contributes no column statements.
func (g *Generator) alterEntityScripts(entities delta.Bucket[delta.Table]) []ModificationScript {
	createdTables := util.FilterSlice(entities.Added, func(item tableItem) bool {
		return item.Transition == delta.Created
	})
	if g.config.SortTablesByDependencies {
		createdTables = sortTablesByDependencies(createdTables)
	}
	createTableScripts := util.TransformSlice(createdTables, g.addTableScript)

	// Deletion is read from the flag itself: a table marked both created and deleted is dropped.
	deleteTableScripts := util.TransformSlice(util.FilterSlice(entities.Deleted, func(item tableItem) bool {
		return item.Descriptor.CompMod.Deleted
	}), g.deleteTableScript)

	modifyTableScripts := util.TransformSlice(util.FilterSlice(entities.Modified, func(item tableItem) bool {
		return item.Descriptor.CompMod.Modified
	}), g.modifyTableScript)

	addColumnScripts := util.FlatMapSlice(util.FilterSlice(entities.Added, func(item tableItem) bool {
		return item.Transition != delta.Created
	}), g.addColumnScripts)

	deleteColumnScripts := util.FlatMapSlice(util.FilterSlice(entities.Deleted, func(item tableItem) bool {
		return !item.Descriptor.CompMod.Deleted
	}), g.deleteColumnScripts)

	modifyColumnScripts := util.FlatMapSlice(entities.Modified, g.modifyColumnScripts)

	slog.Debug("Generated entity scripts",
		"createTable", len(createTableScripts),
		"deleteTable", len(deleteTableScripts),
		"modifyTable", len(modifyTableScripts),
		"addColumn", len(addColumnScripts),
		"deleteColumn", len(deleteColumnScripts),
		"modifyColumn", len(modifyColumnScripts),
	)

	var scripts []ModificationScript
	scripts = append(scripts, modificationScripts(false, createTableScripts...)...)
	scripts = append(scripts, modificationScripts(true, deleteTableScripts...)...)
	scripts = append(scripts, modificationScripts(false, modifyTableScripts...)...)
	scripts = append(scripts, modificationScripts(false, addColumnScripts...)...)
	scripts = append(scripts, modificationScripts(true, deleteColumnScripts...)...)
	scripts = append(scripts, modifyColumnScripts...)
	return scripts
}

// addTableScript renders CREATE TABLE followed by the table's indexes.
func (g *Generator) addTableScript(item tableItem) string {
	table := item.Descriptor
	statements := []string{g.createTableStatement(table)}
	for _, index := range table.Indexes {
		statements = append(statements, g.createIndexStatement(table, index))
	}
	return strings.Join(statements, "\n\n")
}

func (g *Generator) deleteTableScript(item tableItem) string {
	table := item.Descriptor
	statement := g.templates.assign("dropTable", map[string]string{
		"name": tableName(table),
	})
	return CommentIfDeactivated(statement, CommentOptions{IsActivated: table.Activated()})
}

func (g *Generator) modifyTableScript(item tableItem) string {
	table := item.Descriptor
	var statements []string

	if rename := table.CompMod.CollectionName; rename.Changed() && rename.Old != "" && rename.New != "" {
		keyspace := table.CompMod.KeyspaceName
		statements = append(statements, g.templates.assign("renameTable", map[string]string{
			"oldName": QualifiedName(keyspace, rename.Old),
			"newName": QualifiedName(keyspace, rename.New),
		}))
		table.Name = rename.New
	}

	if options := table.CompMod.TableOptions; options.Changed() {
		if clauses := changedTableOptionClauses(options.Old, options.New); len(clauses) > 0 {
			statements = append(statements, g.templates.assign("alterTable", map[string]string{
				"table":          tableName(table),
				"alterStatement": strings.Join(clauses, ", "),
			}))
		}
	}

	return CommentIfDeactivated(strings.Join(statements, "\n"), CommentOptions{IsActivated: table.Activated()})
}

func (g *Generator) addColumnScripts(item tableItem) []string {
	table := item.Descriptor
	return util.TransformSlice(table.Columns, func(column delta.Column) string {
		statement := g.templates.assign("addColumn", map[string]string{
			"table":            tableName(table),
			"columnDefinition": g.columnDefinition(table, column.ColumnDefinition),
		})
		return CommentIfDeactivated(statement, CommentOptions{IsActivated: table.Activated() && column.Activated()})
	})
}

func (g *Generator) deleteColumnScripts(item tableItem) []string {
	table := item.Descriptor
	return util.TransformSlice(table.Columns, func(column delta.Column) string {
		statement := g.templates.assign("dropColumn", map[string]string{
			"table": tableName(table),
			"name":  QuoteIdentifier(column.Name),
		})
		return CommentIfDeactivated(statement, CommentOptions{IsActivated: table.Activated() && column.Activated()})
	})
}

// modifyColumnScripts renders column renames and type changes, then key and index changes. Only
// the dropped keys and indexes are drop scripts.
func (g *Generator) modifyColumnScripts(item tableItem) []ModificationScript {
	table := item.Descriptor
	comment := func(statement string, isActivated bool) string {
		return CommentIfDeactivated(statement, CommentOptions{IsActivated: table.Activated() && isActivated})
	}

	var renameScripts, modifyScripts []string
	for _, column := range table.Columns {
		change := column.CompMod
		if change == nil {
			continue
		}
		if change.OldField.Name != "" && change.NewField.Name != "" && change.OldField.Name != change.NewField.Name {
			renameScripts = append(renameScripts, comment(g.templates.assign("renameColumn", map[string]string{
				"table":   tableName(table),
				"oldName": QuoteIdentifier(change.OldField.Name),
				"newName": QuoteIdentifier(change.NewField.Name),
			}), column.Activated()))
		}
		if !cmp.Equal(change.OldField, change.NewField, ignoreColumnIdentity) {
			definition := column.ColumnDefinition
			if change.NewField.Name != "" {
				definition.Name = change.NewField.Name
			}
			modifyScripts = append(modifyScripts, comment(g.templates.assign("modifyColumn", map[string]string{
				"table":            tableName(table),
				"columnDefinition": g.columnDefinition(table, definition),
			}), column.Activated()))
		}
	}

	var dropKeyScripts, addKeyScripts []string
	if keys := table.CompMod.Keys; keys.Changed() {
		for _, key := range missingFrom(keys.Old, keys.New) {
			if script, ok := g.dropKeyStatement(table, key); ok {
				dropKeyScripts = append(dropKeyScripts, comment(script, key.Activated()))
			}
		}
		for _, key := range missingFrom(keys.New, keys.Old) {
			constraint := CreateKeyConstraint(g.templates, key, table.Activated() && key.Activated())
			addKeyScripts = append(addKeyScripts, comment(g.templates.assign("addConstraint", map[string]string{
				"table":      tableName(table),
				"constraint": constraint.Statement,
			}), constraint.IsActivated && key.Activated()))
		}
	}

	var dropIndexScripts, createIndexScripts []string
	if indexes := table.CompMod.Indexes; indexes.Changed() {
		for _, index := range missingFrom(indexes.Old, indexes.New) {
			dropIndexScripts = append(dropIndexScripts, g.dropIndexStatement(table, index))
		}
		for _, index := range missingFrom(indexes.New, indexes.Old) {
			createIndexScripts = append(createIndexScripts, g.createIndexStatement(table, index))
		}
	}

	var scripts []ModificationScript
	scripts = append(scripts, modificationScripts(false, renameScripts...)...)
	scripts = append(scripts, modificationScripts(false, modifyScripts...)...)
	scripts = append(scripts, modificationScripts(true, dropKeyScripts...)...)
	scripts = append(scripts, modificationScripts(false, addKeyScripts...)...)
	scripts = append(scripts, modificationScripts(true, dropIndexScripts...)...)
	scripts = append(scripts, modificationScripts(false, createIndexScripts...)...)
	return scripts
}

func (g *Generator) dropKeyStatement(table delta.Table, key delta.Key) (string, bool) {
	if strings.EqualFold(strings.TrimSpace(key.KeyType), "PRIMARY KEY") {
		return g.templates.assign("dropPrimaryKey", map[string]string{
			"table": tableName(table),
		}), true
	}
	name := strings.TrimSpace(key.Name)
	if name == "" {
		slog.Warn("Cannot drop an unnamed key", "table", table.Name, "keyType", key.KeyType)
		return "", false
	}
	return g.templates.assign("dropKey", map[string]string{
		"table": tableName(table),
		"name":  QuoteIdentifier(name),
	}), true
}

// missingFrom returns the items of from that have no equal item in other.
func missingFrom[T any](from []T, other []T) []T {
	return util.FilterSlice(from, func(item T) bool {
		for _, candidate := range other {
			if cmp.Equal(item, candidate) {
				return false
			}
		}
		return true
	})
}

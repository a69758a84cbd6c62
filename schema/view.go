package schema

import (
	"log/slog"
	"strings"

	"github.com/sqldef/deltadef/delta"
	"github.com/sqldef/deltadef/util"
)

type viewItem = delta.Item[delta.View]

// alterViewScripts renders dropped views first so that a replacement with the same name can be
// created afterwards. Views arrive with their role already overlaid by the delta parser.
func (g *Generator) alterViewScripts(views delta.Bucket[delta.View]) []ModificationScript {
	deleteViewScripts := util.TransformSlice(util.FilterSlice(views.Deleted, func(item viewItem) bool {
		return item.Descriptor.CompMod.Deleted
	}), g.deleteViewScript)

	createViewScripts := util.TransformSlice(util.FilterSlice(views.Added, func(item viewItem) bool {
		return item.Transition == delta.Created
	}), g.addViewScript)

	modifyViewScripts := util.TransformSlice(util.FilterSlice(views.Modified, func(item viewItem) bool {
		return item.Transition != delta.Created && item.Transition != delta.Deleted
	}), g.modifyViewScript)

	slog.Debug("Generated view scripts",
		"deleteView", len(deleteViewScripts),
		"createView", len(createViewScripts),
		"modifyView", len(modifyViewScripts),
	)

	var scripts []ModificationScript
	scripts = append(scripts, modificationScripts(true, deleteViewScripts...)...)
	scripts = append(scripts, modificationScripts(false, createViewScripts...)...)
	scripts = append(scripts, modificationScripts(false, modifyViewScripts...)...)
	return scripts
}

func viewName(view delta.View) string {
	return QualifiedName(view.CompMod.KeyspaceName, view.Name)
}

func (g *Generator) addViewScript(item viewItem) string {
	view := item.Descriptor
	selectStatement := g.viewSelectStatement(view)
	if selectStatement == "" {
		slog.Warn("Skipping view without a select statement", "view", view.Name)
		return ""
	}

	statement := g.templates.assign("createView", map[string]string{
		"orReplace":       flagClause(view.OrReplace, "OR REPLACE "),
		"algorithm":       algorithmClause(view.Algorithm),
		"sqlSecurity":     sqlSecurityClause(view.SQLSecurity),
		"ifNotExist":      flagClause(view.IfNotExist, "IF NOT EXISTS "),
		"name":            viewName(view),
		"selectStatement": selectStatement,
		"checkOption":     checkOptionClause(view.CheckOption),
	})
	return CommentIfDeactivated(statement, CommentOptions{IsActivated: view.Activated()})
}

func (g *Generator) deleteViewScript(item viewItem) string {
	view := item.Descriptor
	statement := g.templates.assign("dropView", map[string]string{
		"name": viewName(view),
	})
	return CommentIfDeactivated(statement, CommentOptions{IsActivated: view.Activated()})
}

// modifyViewScript renames the view when its name changed and redefines it when its definition
// changed.
func (g *Generator) modifyViewScript(item viewItem) string {
	view := item.Descriptor
	var statements []string

	if rename := view.CompMod.Name; rename.Changed() && rename.Old != "" && rename.New != "" {
		keyspace := view.CompMod.KeyspaceName
		statements = append(statements, g.templates.assign("renameView", map[string]string{
			"oldName": QualifiedName(keyspace, rename.Old),
			"newName": QualifiedName(keyspace, rename.New),
		}))
		view.Name = rename.New
	}

	change := view.CompMod
	if change.SelectStatement.Changed() || change.Algorithm.Changed() || change.SQLSecurity.Changed() || change.CheckOption.Changed() {
		if selectStatement := g.viewSelectStatement(view); selectStatement != "" {
			statements = append(statements, g.templates.assign("alterView", map[string]string{
				"algorithm":       algorithmClause(view.Algorithm),
				"sqlSecurity":     sqlSecurityClause(view.SQLSecurity),
				"name":            viewName(view),
				"selectStatement": selectStatement,
				"checkOption":     checkOptionClause(view.CheckOption),
			}))
		} else {
			slog.Warn("Skipping view redefinition without a select statement", "view", view.Name)
		}
	}

	return CommentIfDeactivated(strings.Join(statements, "\n"), CommentOptions{IsActivated: view.Activated()})
}

// viewSelectStatement prefers the authored select statement and otherwise builds one from the
// view's keys.
func (g *Generator) viewSelectStatement(view delta.View) string {
	if statement := strings.TrimSuffix(strings.TrimSpace(view.SelectStatement), ";"); statement != "" {
		return statement
	}
	if len(view.Keys) == 0 || view.TableName == "" {
		return ""
	}

	keyToString := func(key delta.ViewKey) string {
		column := QuoteIdentifier(key.Name)
		if key.TableName != "" {
			column = QuoteIdentifier(key.TableName) + "." + column
		}
		if key.Alias != "" {
			column += " AS " + QuoteIdentifier(key.Alias)
		}
		return column
	}

	var keys string
	if view.Activated() && !CheckAllKeysDeactivated(view.Keys) {
		divided := DivideIntoActivatedAndDeactivated(view.Keys, keyToString)
		keys = strings.Join(divided.ActivatedItems, ", ") + deactivatedSuffix(divided)
	} else {
		keys = strings.Join(util.TransformSlice(view.Keys, keyToString), ", ")
	}

	return g.templates.assign("viewSelectStatement", map[string]string{
		"keys":      keys,
		"tableName": QualifiedName(view.CompMod.KeyspaceName, view.TableName),
	})
}

func algorithmClause(algorithm string) string {
	if algorithm == "" {
		return ""
	}
	return "ALGORITHM=" + strings.ToUpper(algorithm) + " "
}

func sqlSecurityClause(sqlSecurity string) string {
	if sqlSecurity == "" {
		return ""
	}
	return "SQL SECURITY " + strings.ToUpper(sqlSecurity) + " "
}

// checkOptionClause accepts values like "LOCAL", "CASCADED" or "CHECK OPTION".
func checkOptionClause(checkOption string) string {
	option := strings.ToUpper(strings.TrimSpace(checkOption))
	if option == "" {
		return ""
	}
	option = strings.TrimSpace(strings.TrimSuffix(option, "CHECK OPTION"))
	if option == "" {
		return " WITH CHECK OPTION"
	}
	return " WITH " + option + " CHECK OPTION"
}

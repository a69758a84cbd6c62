package schema

import (
	"regexp"
	"slices"
	"strings"

	"github.com/sqldef/deltadef/delta"
	"github.com/sqldef/deltadef/util"
)

func tableName(table delta.Table) string {
	return QualifiedName(table.CompMod.KeyspaceName, table.Name)
}

func (g *Generator) columnDefinition(table delta.Table, column delta.ColumnDefinition) string {
	fields := map[string]string{
		"name": QuoteIdentifier(column.Name),
		"type": columnType(column),
	}
	if column.Unsigned {
		fields["unsigned"] = " UNSIGNED"
	}
	if column.CharacterSet != "" {
		fields["charset"] = " CHARACTER SET " + column.CharacterSet
	}
	if column.Collation != "" {
		fields["collate"] = " COLLATE " + column.Collation
	}
	if table.IsRequired(column) {
		fields["notNull"] = " NOT NULL"
	}
	if column.Default != "" {
		fields["default"] = " DEFAULT " + defaultValue(column.Default.String())
	}
	if column.AutoIncrement {
		fields["autoIncrement"] = " AUTO_INCREMENT"
	}
	if column.Invisible {
		fields["invisible"] = " INVISIBLE"
	}
	if column.Comment != "" {
		fields["comment"] = " COMMENT " + StringConstant(column.Comment)
	}
	return strings.TrimSpace(g.templates.assign("columnDefinition", fields))
}

var (
	defaultKeywords = []string{"NULL", "TRUE", "FALSE", "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "LOCALTIME", "LOCALTIMESTAMP"}
	// Function calls, bit and hex literals pass through unquoted.
	defaultExpressionRegex = regexp.MustCompile(`^(?:\w+\(.*\)|[bBxX]'[0-9a-fA-F]*')$`)
	defaultNumberRegex     = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
)

// defaultValue renders a column default. Numbers, keywords, literals and expressions are kept
// as written; any other value becomes a string literal.
func defaultValue(value string) string {
	trimmed := strings.TrimSpace(value)
	switch {
	case slices.ContainsFunc(defaultKeywords, func(keyword string) bool { return strings.EqualFold(keyword, trimmed) }):
		return trimmed
	case len(trimmed) >= 2 && strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'"):
		return trimmed
	case strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")"):
		return trimmed
	case defaultExpressionRegex.MatchString(trimmed), defaultNumberRegex.MatchString(trimmed):
		return trimmed
	}
	return StringConstant(value)
}

func columnType(column delta.ColumnDefinition) string {
	typeName := strings.TrimSpace(column.Type)
	switch {
	case typeName == "":
		return ""
	case column.Length != "":
		return typeName + "(" + column.Length.String() + ")"
	case column.Precision != "" && column.Scale != "":
		return typeName + "(" + column.Precision.String() + "," + column.Scale.String() + ")"
	case column.Precision != "":
		return typeName + "(" + column.Precision.String() + ")"
	default:
		return typeName
	}
}

// columnDefinitions renders the column list of CREATE TABLE. Deactivated columns follow the
// activated ones inside a single block comment.
func (g *Generator) columnDefinitions(table delta.Table) string {
	definitionOf := func(column delta.Column) string {
		return g.columnDefinition(table, column.ColumnDefinition)
	}
	if !table.Activated() {
		return strings.Join(util.TransformSlice(table.Columns, definitionOf), ",\n\t")
	}

	divided := DivideIntoActivatedAndDeactivated(table.Columns, definitionOf)
	result := strings.Join(divided.ActivatedItems, ",\n\t")
	if len(divided.DeactivatedItems) > 0 {
		deactivated := strings.Join(divided.DeactivatedItems, ",\n\t")
		if len(divided.ActivatedItems) > 0 {
			result += "\n\t" + CommentIfDeactivated(", "+deactivated, CommentOptions{IsPartOfLine: true})
		} else {
			result = CommentIfDeactivated(deactivated, CommentOptions{IsPartOfLine: true})
		}
	}
	return result
}

func (g *Generator) createTableStatement(table delta.Table) string {
	isActivated := table.Activated()

	keyConstraints := util.TransformSlice(table.Keys, func(key delta.Key) KeyConstraint {
		constraint := CreateKeyConstraint(g.templates, key, isActivated && key.Activated())
		constraint.IsActivated = constraint.IsActivated && key.Activated()
		return constraint
	})
	foreignKeyConstraints := util.TransformSlice(table.ForeignKeys, func(fk delta.ForeignKey) KeyConstraint {
		return CreateForeignKeyConstraint(g.templates, fk, isActivated)
	})
	statementOf := func(constraint KeyConstraint) string {
		return constraint.Statement
	}

	checkConstraints := ""
	if len(table.CheckConstraints) > 0 {
		checkConstraints = ",\n\t" + strings.Join(util.TransformSlice(table.CheckConstraints, func(check delta.CheckConstraint) string {
			return CreateCheckConstraint(g.templates, check)
		}), ",\n\t")
	}

	options := ""
	if clauses := tableOptionClauses(table.TableOptions); len(clauses) > 0 {
		options = " " + strings.Join(clauses, " ")
	}

	statement := g.templates.assign("createTable", map[string]string{
		"orReplace":             flagClause(table.OrReplace, "OR REPLACE "),
		"temporary":             flagClause(table.Temporary, "TEMPORARY "),
		"ifNotExist":            flagClause(table.IfNotExist, "IF NOT EXISTS "),
		"name":                  tableName(table),
		"columnDefinitions":     g.columnDefinitions(table),
		"keyConstraints":        GenerateConstraintsString(DivideIntoActivatedAndDeactivated(keyConstraints, statementOf), isActivated),
		"checkConstraints":      checkConstraints,
		"foreignKeyConstraints": GenerateConstraintsString(DivideIntoActivatedAndDeactivated(foreignKeyConstraints, statementOf), isActivated),
		"options":               options,
	})
	return CommentIfDeactivated(statement, CommentOptions{IsActivated: isActivated})
}

func tableOptionClauses(options delta.TableOptions) []string {
	var clauses []string
	if options.Engine != "" {
		clauses = append(clauses, "ENGINE="+options.Engine)
	}
	if options.CharacterSet != "" {
		clauses = append(clauses, "DEFAULT CHARSET="+options.CharacterSet)
	}
	if options.Collation != "" {
		clauses = append(clauses, "COLLATE="+options.Collation)
	}
	if options.AutoIncrement != "" {
		clauses = append(clauses, "AUTO_INCREMENT="+options.AutoIncrement.String())
	}
	if options.RowFormat != "" {
		clauses = append(clauses, "ROW_FORMAT="+options.RowFormat)
	}
	if options.Comment != "" {
		clauses = append(clauses, "COMMENT="+StringConstant(options.Comment))
	}
	return clauses
}

// changedTableOptionClauses lists the options whose value differs. A cleared comment is reset
// explicitly; other cleared options cannot be expressed and are left out.
func changedTableOptionClauses(old, new delta.TableOptions) []string {
	var changed delta.TableOptions
	if old.Engine != new.Engine {
		changed.Engine = new.Engine
	}
	if old.CharacterSet != new.CharacterSet {
		changed.CharacterSet = new.CharacterSet
	}
	if old.Collation != new.Collation {
		changed.Collation = new.Collation
	}
	if old.AutoIncrement != new.AutoIncrement {
		changed.AutoIncrement = new.AutoIncrement
	}
	if old.RowFormat != new.RowFormat {
		changed.RowFormat = new.RowFormat
	}
	clauses := tableOptionClauses(changed)
	if old.Comment != new.Comment {
		clauses = append(clauses, "COMMENT="+StringConstant(new.Comment))
	}
	return clauses
}

func indexName(table delta.Table, index delta.Index) string {
	if name := strings.TrimSpace(index.Name); name != "" {
		return name
	}
	columnName := ""
	if len(index.Columns) > 0 {
		columnName = index.Columns[0].Name
	}
	return util.BuildIndexName(table.Name, columnName, "idx")
}

func (g *Generator) createIndexStatement(table delta.Table, index delta.Index) string {
	isParentActivated := table.Activated() && index.Activated()
	isAllColumnsDeactivated := CheckAllKeysDeactivated(index.Columns)
	using, ignore, comment, blockSize := keyOptions(index.Category, index.Ignore, index.Comment, index.BlockSize)

	indexType := ""
	if index.IndexType != "" {
		indexType = strings.ToUpper(strings.TrimSpace(index.IndexType)) + " "
	}

	statement := g.templates.assign("createIndex", map[string]string{
		"indexType":    indexType,
		"name":         QuoteIdentifier(indexName(table, index)),
		"using":        using,
		"table":        tableName(table),
		"columns":      getKeyColumns(isAllColumnsDeactivated, isParentActivated, index.Columns),
		"indexOptions": ignore + comment + blockSize,
	})
	return CommentIfDeactivated(statement, CommentOptions{IsActivated: isParentActivated && !isAllColumnsDeactivated})
}

func (g *Generator) dropIndexStatement(table delta.Table, index delta.Index) string {
	statement := g.templates.assign("dropIndex", map[string]string{
		"name":  QuoteIdentifier(indexName(table, index)),
		"table": tableName(table),
	})
	return CommentIfDeactivated(statement, CommentOptions{IsActivated: table.Activated() && index.Activated()})
}

func flagClause(enabled bool, clause string) string {
	if enabled {
		return clause
	}
	return ""
}

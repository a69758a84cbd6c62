package schema

import (
	"fmt"
	"strings"

	"github.com/sqldef/deltadef/delta"
	"github.com/sqldef/deltadef/util"
)

// KeyConstraint is a rendered constraint clause. A deactivated clause is rendered in full and
// left to the caller to comment out.
type KeyConstraint struct {
	Statement   string
	IsActivated bool
}

func (k KeyConstraint) Activated() bool {
	return k.IsActivated
}

// GenerateConstraintsString renders the constraint clauses that follow the column definitions of
// a table. Deactivated clauses share a single trailing block comment, which is omitted when the
// whole table is deactivated because the table statement is commented out as a whole.
func GenerateConstraintsString(divided DividedItems, isParentActivated bool) string {
	activatedConstraints := ""
	if len(divided.ActivatedItems) > 0 {
		activatedConstraints = ",\n\t" + strings.Join(divided.ActivatedItems, ",\n\t")
	}

	deactivatedConstraints := ""
	if len(divided.DeactivatedItems) > 0 {
		deactivatedConstraints = "\n\t" + CommentIfDeactivated(strings.Join(divided.DeactivatedItems, ",\n\t"), CommentOptions{
			IsActivated:  !isParentActivated,
			IsPartOfLine: true,
		})
	}

	return activatedConstraints + deactivatedConstraints
}

// ForeignKeysToString renders the columns of a foreign key. Pre-rendered references pass
// through unchanged.
func ForeignKeysToString(keys delta.ColumnRefs) string {
	if keys.IsRendered {
		return keys.Rendered
	}

	quote := func(column delta.KeyColumn) string {
		return QuoteIdentifier(strings.TrimSpace(column.Name))
	}
	divided := DivideIntoActivatedAndDeactivated(keys.Columns, quote)
	return strings.Join(divided.ActivatedItems, ", ") + deactivatedSuffix(divided)
}

// ForeignActiveKeysToString renders the plain column names of a foreign key that is going to be
// commented out as a whole.
func ForeignActiveKeysToString(keys delta.ColumnRefs) string {
	if keys.IsRendered {
		return keys.Rendered
	}
	return strings.Join(util.TransformSlice(keys.Columns, func(column delta.KeyColumn) string {
		return strings.TrimSpace(column.Name)
	}), ", ")
}

// CreateKeyConstraint renders a primary or unique key clause such as
// "CONSTRAINT `pk` PRIMARY KEY (`id` /* , `old` */)".
func CreateKeyConstraint(templates Templates, key delta.Key, isParentActivated bool) KeyConstraint {
	isAllColumnsDeactivated := CheckAllKeysDeactivated(key.Columns)
	using, ignore, comment, blockSize := keyOptions(key.Category, key.Ignore, key.Comment, key.BlockSize)

	return KeyConstraint{
		Statement: templates.assign("createKeyConstraint", map[string]string{
			"constraintName": constraintName(key.Name),
			"keyType":        key.KeyType,
			"columns":        getKeyColumns(isAllColumnsDeactivated, isParentActivated, key.Columns),
			"using":          using,
			"ignore":         ignore,
			"comment":        comment,
			"blockSize":      blockSize,
		}),
		IsActivated: !isAllColumnsDeactivated,
	}
}

func CreateForeignKeyConstraint(templates Templates, fk delta.ForeignKey, isParentActivated bool) KeyConstraint {
	isActivated := fk.Activated() && fk.Columns.Activated() && fk.ReferencedColumns.Activated()

	keysToString := ForeignKeysToString
	if !isActivated || !isParentActivated {
		keysToString = ForeignActiveKeysToString
	}

	onDelete := ""
	if fk.OnDelete != "" {
		onDelete = " ON DELETE " + fk.OnDelete
	}
	onUpdate := ""
	if fk.OnUpdate != "" {
		onUpdate = " ON UPDATE " + fk.OnUpdate
	}

	return KeyConstraint{
		Statement: templates.assign("createForeignKeyConstraint", map[string]string{
			"name":         constraintName(fk.Name),
			"foreignKey":   keysToString(fk.Columns),
			"primaryTable": QuoteIdentifier(strings.TrimSpace(fk.ReferencedTable)),
			"primaryKey":   keysToString(fk.ReferencedColumns),
			"onDelete":     onDelete,
			"onUpdate":     onUpdate,
		}),
		IsActivated: isActivated,
	}
}

func CreateCheckConstraint(templates Templates, check delta.CheckConstraint) string {
	return templates.assign("checkConstraint", map[string]string{
		"name":       constraintName(check.Name),
		"expression": strings.TrimSpace(check.Expression),
	})
}

func constraintName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return "CONSTRAINT " + QuoteIdentifier(name) + " "
}

// keyOptions renders the optional index modifiers, each with a leading space.
func keyOptions(category string, ignore bool, comment string, blockSize delta.Text) (string, string, string, string) {
	var usingClause, ignoreClause, commentClause, blockSizeClause string
	if category != "" {
		usingClause = " USING " + category
	}
	if ignore {
		ignoreClause = " IGNORED"
	}
	if comment != "" {
		commentClause = " COMMENT " + StringConstant(comment)
	}
	if blockSize != "" {
		blockSizeClause = " KEY_BLOCK_SIZE=" + blockSize.String()
	}
	return usingClause, ignoreClause, commentClause, blockSizeClause
}

// getKeyColumns renders the parenthesized column list of a key. Deactivated columns are moved
// into a trailing comment unless the key or its parent is going to be commented out entirely,
// in which case the columns are listed plainly to avoid nested comments.
func getKeyColumns(isAllColumnsDeactivated bool, isParentActivated bool, columns []delta.KeyColumn) string {
	if len(columns) == 0 {
		return ""
	}

	columnToString := func(column delta.KeyColumn) string {
		return strings.TrimSpace(fmt.Sprintf("%s %s", QuoteIdentifier(column.Name), column.Order))
	}

	if !isAllColumnsDeactivated && isParentActivated {
		divided := DivideIntoActivatedAndDeactivated(columns, columnToString)
		return " (" + strings.Join(divided.ActivatedItems, ", ") + deactivatedSuffix(divided) + ")"
	}
	return " (" + strings.Join(util.TransformSlice(columns, columnToString), ", ") + ")"
}

// deactivatedSuffix comments out the deactivated part of a comma separated list so that the
// list stays valid with or without the comment.
func deactivatedSuffix(divided DividedItems) string {
	if len(divided.DeactivatedItems) == 0 {
		return ""
	}
	deactivated := strings.Join(divided.DeactivatedItems, ", ")
	if len(divided.ActivatedItems) == 0 {
		return CommentIfDeactivated(deactivated, CommentOptions{IsPartOfLine: true})
	}
	return " " + CommentIfDeactivated(", "+deactivated, CommentOptions{IsPartOfLine: true})
}

package util

import (
	"fmt"
	"unicode/utf8"
)

// MaxIdentifierLength is the identifier limit of MariaDB and MySQL, counted in characters.
const MaxIdentifierLength = 64

// BuildIndexName generates a name for an index that was declared without one, in the form
// `{table}_{column}_{suffix}`. Names longer than MaxIdentifierLength characters are truncated on
// character boundaries:
// - If column > 28 chars: reduce column to 28 first, then apply remaining overflow to table
// - If column <= 28 chars: truncate table
func BuildIndexName(tableName, columnName, suffix string) string {
	fullName := fmt.Sprintf("%s_%s_%s", tableName, columnName, suffix)
	if utf8.RuneCountInString(fullName) <= MaxIdentifierLength {
		return fullName
	}

	table := []rune(tableName)
	column := []rune(columnName)
	overflow := utf8.RuneCountInString(fullName) - MaxIdentifierLength
	tableLen := len(table)
	columnLen := len(column)

	tableRemove := 0
	columnRemove := 0

	if columnLen > 28 {
		columnRemove = overflow
		if columnRemove > columnLen-28 {
			tableRemove = columnRemove - (columnLen - 28)
			columnRemove = columnLen - 28
		}
	} else {
		tableRemove = overflow
	}
	if tableRemove > tableLen {
		tableRemove = tableLen
	}

	truncatedTable := string(table[:tableLen-tableRemove])
	truncatedColumn := string(column[:columnLen-columnRemove])

	return fmt.Sprintf("%s_%s_%s", truncatedTable, truncatedColumn, suffix)
}

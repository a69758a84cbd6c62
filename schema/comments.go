package schema

import (
	"strings"
)

type CommentOptions struct {
	IsActivated  bool
	IsPartOfLine bool
}

// CommentIfDeactivated leaves activated statements alone. A deactivated fragment inside a line is
// wrapped in a block comment; a deactivated statement has every line prefixed with `-- `.
func CommentIfDeactivated(statement string, options CommentOptions) string {
	if options.IsActivated || statement == "" {
		return statement
	}
	if options.IsPartOfLine {
		return "/* " + statement + " */"
	}

	lines := strings.Split(statement, "\n")
	for i, line := range lines {
		lines[i] = "-- " + line
	}
	return strings.Join(lines, "\n")
}

// EscapeQuotes doubles single quotes for use inside a SQL string literal.
func EscapeQuotes(str string) string {
	return strings.ReplaceAll(str, "'", "''")
}

// StringConstant renders str as a SQL string literal.
func StringConstant(str string) string {
	return "'" + EscapeQuotes(str) + "'"
}

// QuoteIdentifier wraps name in backticks, doubling any backtick inside it.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QualifiedName quotes name, prefixed by its container when one is known.
func QualifiedName(containerName string, name string) string {
	if containerName == "" {
		return QuoteIdentifier(name)
	}
	return QuoteIdentifier(containerName) + "." + QuoteIdentifier(name)
}

type activatable interface {
	Activated() bool
}

type DividedItems struct {
	ActivatedItems   []string
	DeactivatedItems []string
}

// DivideIntoActivatedAndDeactivated renders items and splits them by activation, keeping the
// original order within each group.
func DivideIntoActivatedAndDeactivated[T activatable](items []T, toString func(T) string) DividedItems {
	var divided DividedItems
	for _, item := range items {
		if item.Activated() {
			divided.ActivatedItems = append(divided.ActivatedItems, toString(item))
		} else {
			divided.DeactivatedItems = append(divided.DeactivatedItems, toString(item))
		}
	}
	return divided
}

// CheckAllKeysDeactivated is false for an empty list.
func CheckAllKeysDeactivated[T activatable](items []T) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Activated() {
			return false
		}
	}
	return true
}

package schema

import (
	"strings"
	"testing"

	"github.com/sqldef/deltadef/delta"
	"github.com/stretchr/testify/assert"
)

func TestStringConstantSimple(t *testing.T) {
	assert.Equal(t, StringConstant(""), "''")
	assert.Equal(t, StringConstant("hello world"), "'hello world'")
}

func TestStringConstantContainingSingleQuote(t *testing.T) {
	assert.Equal(t, StringConstant("it's the bee's knees"), "'it''s the bee''s knees'")
	assert.Equal(t, StringConstant("'"), "''''")
	assert.Equal(t, StringConstant("''"), "''''''")
	assert.Equal(t, StringConstant("'example'"), "'''example'''")
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`users`", QuoteIdentifier("users"))
	assert.Equal(t, "`we``ird`", QuoteIdentifier("we`ird"))
	assert.Equal(t, "`users`", QualifiedName("", "users"))
	assert.Equal(t, "`shop`.`users`", QualifiedName("shop", "users"))
}

func TestCommentIfDeactivated(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		options   CommentOptions
		expected  string
	}{
		{
			name:      "activated statement",
			statement: "DROP TABLE IF EXISTS `t`;",
			options:   CommentOptions{IsActivated: true},
			expected:  "DROP TABLE IF EXISTS `t`;",
		},
		{
			name:      "deactivated statement",
			statement: "CREATE TABLE `t` (\n\t`id` int\n);",
			options:   CommentOptions{},
			expected:  "-- CREATE TABLE `t` (\n-- \t`id` int\n-- );",
		},
		{
			name:      "deactivated fragment",
			statement: "`old`",
			options:   CommentOptions{IsPartOfLine: true},
			expected:  "/* `old` */",
		},
		{
			name:      "empty statement",
			statement: "",
			options:   CommentOptions{},
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CommentIfDeactivated(tt.statement, tt.options))
		})
	}
}

func TestDivideIntoActivatedAndDeactivated(t *testing.T) {
	columns := []delta.KeyColumn{
		{Name: "a"},
		{Name: "b", Activation: delta.Active(false)},
		{Name: "c", Activation: delta.Active(true)},
		{Name: "d", Activation: delta.Active(false)},
	}
	divided := DivideIntoActivatedAndDeactivated(columns, func(column delta.KeyColumn) string {
		return column.Name
	})

	assert.Equal(t, []string{"a", "c"}, divided.ActivatedItems)
	assert.Equal(t, []string{"b", "d"}, divided.DeactivatedItems)
}

// Every column of a key is rendered exactly once, in its original relative order.
func TestKeyColumnsPartitionIsComplete(t *testing.T) {
	patterns := [][]bool{
		{true},
		{false},
		{true, false},
		{false, true},
		{true, false, true, false},
		{false, false, true},
		{true, true, true},
	}

	for _, pattern := range patterns {
		var columns []delta.KeyColumn
		var names []string
		for i, activated := range pattern {
			name := string(rune('a' + i))
			names = append(names, "`"+name+"`")
			columns = append(columns, delta.KeyColumn{Name: name, Activation: delta.Active(activated)})
		}

		rendered := getKeyColumns(CheckAllKeysDeactivated(columns), true, columns)
		stripped := strings.NewReplacer("/*", "", "*/", "", "(", "", ")", "", ",", " ").Replace(rendered)
		fields := strings.Fields(stripped)

		var expectedActivated, expectedDeactivated []string
		for i, activated := range pattern {
			if activated {
				expectedActivated = append(expectedActivated, names[i])
			} else {
				expectedDeactivated = append(expectedDeactivated, names[i])
			}
		}
		if len(expectedActivated) == 0 {
			assert.Equal(t, names, fields, "pattern %v", pattern)
		} else {
			assert.Equal(t, append(expectedActivated, expectedDeactivated...), fields, "pattern %v", pattern)
		}
	}
}

func TestCheckAllKeysDeactivated(t *testing.T) {
	assert.False(t, CheckAllKeysDeactivated([]delta.KeyColumn{}))
	assert.False(t, CheckAllKeysDeactivated([]delta.KeyColumn{{Name: "a"}, {Name: "b", Activation: delta.Active(false)}}))
	assert.True(t, CheckAllKeysDeactivated([]delta.KeyColumn{{Name: "a", Activation: delta.Active(false)}}))
}

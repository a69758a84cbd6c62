package schema

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
)

// Templates maps a template name to a statement with `${placeholder}` fields.
// Identifiers are quoted before substitution, so templates never carry quotes of their own.
type Templates map[string]string

var defaultTemplates = Templates{
	"createDatabase": "CREATE DATABASE ${ifNotExist}${name}${dbOptions};",
	"alterDatabase":  "ALTER DATABASE ${name}${dbOptions};",
	"dropDatabase":   "DROP DATABASE IF EXISTS ${name};",

	"createTable": "CREATE ${orReplace}${temporary}TABLE ${ifNotExist}${name} (\n" +
		"\t${columnDefinitions}${keyConstraints}${checkConstraints}${foreignKeyConstraints}\n" +
		")${options};",
	"columnDefinition":           "${name} ${type}${unsigned}${charset}${collate}${notNull}${default}${autoIncrement}${invisible}${comment}",
	"createKeyConstraint":        "${constraintName}${keyType}${columns}${using}${ignore}${comment}${blockSize}",
	"createForeignKeyConstraint": "${name}FOREIGN KEY (${foreignKey}) REFERENCES ${primaryTable} (${primaryKey})${onDelete}${onUpdate}",
	"checkConstraint":            "${name}CHECK (${expression})",
	"createIndex":                "CREATE ${indexType}INDEX ${ifNotExist}${name}${using} ON ${table}${columns}${indexOptions};",
	"dropIndex":                  "DROP INDEX ${name} ON ${table};",
	"dropTable":                  "DROP TABLE IF EXISTS ${name};",
	"renameTable":                "ALTER TABLE ${oldName} RENAME TO ${newName};",
	"alterTable":                 "ALTER TABLE ${table} ${alterStatement};",
	"addColumn":                  "ALTER TABLE ${table} ADD COLUMN ${columnDefinition};",
	"dropColumn":                 "ALTER TABLE ${table} DROP COLUMN ${name};",
	"renameColumn":               "ALTER TABLE ${table} RENAME COLUMN ${oldName} TO ${newName};",
	"modifyColumn":               "ALTER TABLE ${table} MODIFY COLUMN ${columnDefinition};",
	"addConstraint":              "ALTER TABLE ${table} ADD ${constraint};",
	"dropPrimaryKey":             "ALTER TABLE ${table} DROP PRIMARY KEY;",
	"dropKey":                    "ALTER TABLE ${table} DROP INDEX ${name};",

	"createView":          "CREATE ${orReplace}${algorithm}${sqlSecurity}VIEW ${ifNotExist}${name} AS ${selectStatement}${checkOption};",
	"viewSelectStatement": "SELECT ${keys}\n\tFROM ${tableName}",
	"alterView":           "ALTER ${algorithm}${sqlSecurity}VIEW ${name} AS ${selectStatement}${checkOption};",
	"renameView":          "RENAME TABLE ${oldName} TO ${newName};",
	"dropView":            "DROP VIEW IF EXISTS ${name};",
}

// DefaultTemplates returns a copy of the built-in MariaDB templates.
func DefaultTemplates() Templates {
	return maps.Clone(defaultTemplates)
}

// NewTemplates applies overrides on top of the defaults. Only known template names can be overridden.
func NewTemplates(overrides map[string]string) (Templates, error) {
	templates := DefaultTemplates()
	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		if _, ok := templates[name]; !ok {
			return nil, fmt.Errorf("unknown template %q", name)
		}
		templates[name] = overrides[name]
	}
	return templates, nil
}

var placeholderRegex = regexp.MustCompile(`\$\{(\w+)\}`)

// AssignTemplates substitutes every `${key}` in template. Keys missing from fields become empty.
func AssignTemplates(template string, fields map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(template, func(placeholder string) string {
		key := placeholderRegex.FindStringSubmatch(placeholder)[1]
		return fields[key]
	})
}

func (t Templates) assign(name string, fields map[string]string) string {
	return AssignTemplates(t[name], fields)
}

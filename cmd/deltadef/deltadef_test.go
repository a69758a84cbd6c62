package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOptions(t *testing.T) {
	options := parseOptions([]string{
		"--config-inline", "templates:\n  dropTable: 'DROP TABLE ${name};'\n",
		"--config-inline", "templates:\n  dropTable: 'DROP TABLE ${name} CASCADE;'\n",
		"--sort-tables",
		"--enable-drop",
		"--format", "json",
		"--concurrency", "4",
		"--file", "a.json",
		"b.json",
	})

	assert.Equal(t, []string{"a.json", "b.json"}, options.DeltaFiles)
	assert.True(t, options.EnableDrop)
	assert.Equal(t, "json", options.Format)
	assert.Equal(t, 4, options.Concurrency)
	assert.True(t, options.Config.SortTablesByDependencies)
	assert.False(t, options.Config.Containers.SkipModified)
	assert.Equal(t, map[string]string{"dropTable": "DROP TABLE ${name} CASCADE;"}, options.Config.Templates)
}

func TestParseOptionsDefaults(t *testing.T) {
	options := parseOptions([]string{"--skip-modified-containers"})

	assert.Equal(t, []string{"-"}, options.DeltaFiles)
	assert.False(t, options.EnableDrop)
	assert.Equal(t, "sql", options.Format)
	assert.Equal(t, 0, options.Concurrency)
	assert.True(t, options.Config.Containers.SkipModified)
	assert.Nil(t, options.Config.Templates)
}

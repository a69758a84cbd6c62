// This package turns a delta model into ordered alter scripts.
// Never touch database.
package schema

import (
	"log/slog"

	"github.com/sqldef/deltadef/config"
	"github.com/sqldef/deltadef/delta"
)

// This struct holds the configuration and templates used during GenerateAlterScripts().
type Generator struct {
	config    config.GeneratorConfig
	templates Templates
}

func NewGenerator(config config.GeneratorConfig) (*Generator, error) {
	templates, err := NewTemplates(config.Templates)
	if err != nil {
		return nil, err
	}
	return &Generator{
		config:    config,
		templates: templates,
	}, nil
}

// GenerateAlterScripts parses a delta document and returns its scripts in dependency order:
// containers, then tables, then views. A document without a usable delta tree fails with
// *delta.MalformedInputError and no scripts.
func GenerateAlterScripts(document string, config config.GeneratorConfig) ([]ScriptDto, error) {
	generator, err := NewGenerator(config)
	if err != nil {
		return nil, err
	}

	model, err := delta.Parse([]byte(document))
	if err != nil {
		return nil, err
	}
	return generator.Generate(model), nil
}

func (g *Generator) Generate(model *delta.Model) []ScriptDto {
	var scriptDtos []*ScriptDto
	scriptDtos = append(scriptDtos, g.alterContainerScriptDtos(model.Containers, g.config.Containers.SkipModified)...)
	for _, script := range g.alterEntityScripts(model.Entities) {
		scriptDtos = append(scriptDtos, newStatementScriptDto(objectTypeEntity, script))
	}
	for _, script := range g.alterViewScripts(model.Views) {
		scriptDtos = append(scriptDtos, newStatementScriptDto(objectTypeView, script))
	}

	result := []ScriptDto{}
	for _, dto := range scriptDtos {
		if prettified := prettifyScriptDto(dto); prettified != nil {
			result = append(result, *prettified)
		}
	}
	slog.Debug("Generated alter scripts", "candidates", len(scriptDtos), "scripts", len(result))
	return result
}

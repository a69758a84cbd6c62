package schema

import (
	"strings"

	"github.com/sqldef/deltadef/util"
)

const (
	objectTypeContainer = "container"
	objectTypeEntity    = "entity"
	objectTypeView      = "view"
)

type ModificationScript struct {
	Script       string `json:"script"`
	IsDropScript bool   `json:"isDropScript"`
}

// ScriptDto is one unit of output: statements plus the context the host needs to render them.
type ScriptDto struct {
	ObjectType  string               `json:"objectType"`
	IsActivated bool                 `json:"isActivated"`
	Scripts     []ModificationScript `json:"scripts"`
}

func newScriptDto(objectType string, isActivated bool, scripts ...ModificationScript) *ScriptDto {
	return &ScriptDto{
		ObjectType:  objectType,
		IsActivated: isActivated,
		Scripts:     scripts,
	}
}

// modificationScripts trims the statements of one phase and tags them with the phase's drop flag.
func modificationScripts(isDropScript bool, statements ...string) []ModificationScript {
	return util.TransformSlice(statements, func(statement string) ModificationScript {
		return ModificationScript{
			Script:       strings.TrimSpace(statement),
			IsDropScript: isDropScript,
		}
	})
}

// newStatementScriptDto wraps a single rendered statement. Statements that are commented out as a
// whole are reported as deactivated.
func newStatementScriptDto(objectType string, script ModificationScript) *ScriptDto {
	return newScriptDto(objectType, !strings.HasPrefix(strings.TrimSpace(script.Script), "--"), script)
}

// prettifyScriptDto trims every script and drops the empty ones. A dto left without scripts is
// nil.
func prettifyScriptDto(dto *ScriptDto) *ScriptDto {
	if dto == nil {
		return nil
	}

	var scripts []ModificationScript
	for _, script := range dto.Scripts {
		script.Script = strings.TrimSpace(script.Script)
		if script.Script != "" {
			scripts = append(scripts, script)
		}
	}
	if len(scripts) == 0 {
		return nil
	}

	prettified := *dto
	prettified.Scripts = scripts
	return &prettified
}

package schema

import (
	"log/slog"
	"strings"

	"github.com/sqldef/deltadef/delta"
	"github.com/sqldef/deltadef/util"
)

type containerItem = delta.Item[delta.Container]

// alterContainerScriptDtos renders CREATE and DROP for containers and, unless skipModified is set,
// ALTER for containers whose options changed.
func (g *Generator) alterContainerScriptDtos(containers delta.Bucket[delta.Container], skipModified bool) []*ScriptDto {
	addContainerScriptDtos := util.TransformSlice(containers.Added, g.addContainerScriptDto)
	deleteContainerScriptDtos := util.TransformSlice(containers.Deleted, g.deleteContainerScriptDto)

	scriptDtos := append(addContainerScriptDtos, deleteContainerScriptDtos...)
	if skipModified {
		return scriptDtos
	}

	modifyContainerScriptDtos := util.FlatMapSlice(containers.Modified, g.modifyContainerScriptDtos)
	return append(scriptDtos, modifyContainerScriptDtos...)
}

func (g *Generator) addContainerScriptDto(item containerItem) *ScriptDto {
	container := item.Descriptor
	statement := g.templates.assign("createDatabase", map[string]string{
		"ifNotExist": flagClause(container.IfNotExist, "IF NOT EXISTS "),
		"name":       QuoteIdentifier(container.Name),
		"dbOptions":  databaseOptions(container.CharacterSet, container.Collation, container.Comment, container.Comment != ""),
	})
	return newScriptDto(objectTypeContainer, container.Activated(), ModificationScript{
		Script: CommentIfDeactivated(statement, CommentOptions{IsActivated: container.Activated()}),
	})
}

func (g *Generator) deleteContainerScriptDto(item containerItem) *ScriptDto {
	statement := g.templates.assign("dropDatabase", map[string]string{
		"name": QuoteIdentifier(item.Name),
	})
	return newScriptDto(objectTypeContainer, true, ModificationScript{
		Script:       statement,
		IsDropScript: true,
	})
}

func (g *Generator) modifyContainerScriptDtos(item containerItem) []*ScriptDto {
	container := item.Descriptor
	change := container.CompMod
	if change.Name.Changed() {
		slog.Warn("Renaming a database is not supported, skipping the rename", "old", change.Name.Old, "new", change.Name.New)
	}

	var characterSet, collation, comment string
	if change.CharacterSet.Changed() {
		characterSet = change.CharacterSet.New
	}
	if change.Collation.Changed() {
		collation = change.Collation.New
	}
	if change.Comment.Changed() {
		comment = change.Comment.New
	}
	options := databaseOptions(characterSet, collation, comment, change.Comment.Changed())
	if options == "" {
		return nil
	}

	statement := g.templates.assign("alterDatabase", map[string]string{
		"name":      QuoteIdentifier(container.Name),
		"dbOptions": options,
	})
	return []*ScriptDto{
		newScriptDto(objectTypeContainer, container.Activated(), ModificationScript{
			Script: CommentIfDeactivated(statement, CommentOptions{IsActivated: container.Activated()}),
		}),
	}
}

// databaseOptions renders the option list of CREATE/ALTER DATABASE with a leading space.
// withComment renders the comment even when it is empty, which clears it.
func databaseOptions(characterSet, collation, comment string, withComment bool) string {
	var options []string
	if characterSet != "" {
		options = append(options, "CHARACTER SET = "+characterSet)
	}
	if collation != "" {
		options = append(options, "COLLATE = "+collation)
	}
	if withComment {
		options = append(options, "COMMENT = "+StringConstant(comment))
	}
	if len(options) == 0 {
		return ""
	}
	return " " + strings.Join(options, " ")
}

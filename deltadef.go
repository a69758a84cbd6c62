package deltadef

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/sqldef/deltadef/config"
	"github.com/sqldef/deltadef/delta"
	"github.com/sqldef/deltadef/schema"
	"github.com/sqldef/deltadef/util"
	"golang.org/x/term"
)

const (
	FormatSQL  = "sql"
	FormatJSON = "json"
)

type Options struct {
	DeltaFiles  []string
	EnableDrop  bool
	Format      string
	Concurrency int
	Debug       bool
	Config      config.GeneratorConfig
}

type compiledFile struct {
	file    string
	scripts []schema.ScriptDto
}

// Main function of the command. Every delta file is compiled independently and printed in the
// order the files were given.
func Run(w io.Writer, options *Options) error {
	compiled, err := util.ConcurrentMapFuncWithError(options.DeltaFiles, options.Concurrency, func(file string) (compiledFile, error) {
		document, err := ReadFile(file)
		if err != nil {
			return compiledFile{}, fmt.Errorf("failed to read '%s': %w", file, err)
		}
		if options.Debug {
			if model, err := delta.Parse([]byte(document)); err == nil {
				pp.Fprintln(os.Stderr, model)
			}
		}
		scripts, err := schema.GenerateAlterScripts(document, options.Config)
		if err != nil {
			return compiledFile{}, fmt.Errorf("%s: %w", file, err)
		}
		return compiledFile{file: file, scripts: scripts}, nil
	})
	if err != nil {
		return err
	}

	switch options.Format {
	case FormatJSON:
		return showJSON(w, compiled)
	case FormatSQL, "":
		showScripts(w, compiled, options.EnableDrop)
		return nil
	default:
		return fmt.Errorf("unknown format '%s' (expected %s or %s)", options.Format, FormatSQL, FormatJSON)
	}
}

func showScripts(w io.Writer, compiled []compiledFile, enableDrop bool) {
	for i, c := range compiled {
		if len(compiled) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "-- %s --\n", c.file)
		}
		if len(c.scripts) == 0 {
			fmt.Fprintln(w, "-- Nothing is modified --")
			continue
		}
		for _, dto := range c.scripts {
			for _, script := range dto.Scripts {
				if script.IsDropScript && !enableDrop {
					fmt.Fprintf(w, "-- Skipped: %s\n", strings.ReplaceAll(script.Script, "\n", "\n-- "))
					continue
				}
				fmt.Fprintln(w, script.Script)
			}
		}
	}
}

// showJSON prints the script dtos of a single file as an array, and of several files as an
// object keyed by file name. Drop scripts are kept; consumers read isDropScript.
func showJSON(w io.Writer, compiled []compiledFile) error {
	var v any
	if len(compiled) == 1 {
		v = compiled[0].scripts
	} else {
		byFile := make(map[string][]schema.ScriptDto, len(compiled))
		for _, c := range compiled {
			byFile[c.file] = c.scripts
		}
		v = byFile
	}

	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(buf))
	return err
}

// ParseFiles drops duplicated files while keeping their order. An empty list means stdin.
func ParseFiles(files []string) []string {
	if len(files) == 0 {
		return []string{"-"}
	}

	seen := make(map[string]bool, len(files))
	return util.FilterSlice(files, func(file string) bool {
		if seen[file] {
			return false
		}
		seen[file] = true
		return true
	})
}

func ReadFile(filepath string) (string, error) {
	var err error
	var buf []byte

	if filepath == "-" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return "", fmt.Errorf("stdin is not piped")
		}
		buf, err = io.ReadAll(os.Stdin)
	} else {
		buf, err = os.ReadFile(filepath)
	}

	if err != nil {
		return "", err
	}
	return string(buf), nil
}

package testutil

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/sqldef/deltadef/config"
	"github.com/sqldef/deltadef/schema"
	"github.com/sqldef/deltadef/util"
	"github.com/stretchr/testify/assert"
)

type TestCase struct {
	Delta  string  // delta document (JSON)
	Config string  // optional generator config (YAML)
	Output *string // expected scripts, separated by blank lines
	Error  *string // default: nil
}

func init() {
	util.InitSlog()

	// Keep skipped-descriptor warnings visible but hide debug counters unless LOG_LEVEL says otherwise.
	if os.Getenv("LOG_LEVEL") == "" {
		util.SetLogLevel(slog.LevelWarn)
	}
}

func ReadTests(pattern string) (map[string]TestCase, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	ret := map[string]TestCase{}
	// Track which file each test case came from for better error messages
	testFileMap := map[string]string{}

	for _, file := range files {
		var tests map[string]*TestCase

		buf, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		dec := yaml.NewDecoder(bytes.NewReader(buf), yaml.DisallowUnknownField())
		err = dec.Decode(&tests)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		for name, test := range tests {
			if test.Output == nil && test.Error == nil {
				return nil, fmt.Errorf("%s: test case '%s': either 'output' or 'error' must be specified", file, name)
			}
			if existingFile, ok := testFileMap[name]; ok {
				return nil, fmt.Errorf("duplicate test case name '%s': defined in both '%s' and '%s'", name, existingFile, file)
			}
			testFileMap[name] = file
			ret[name] = *test
		}
	}

	return ret, nil
}

func RunTest(t *testing.T, test TestCase) {
	t.Helper()

	generatorConfig, err := config.ParseGeneratorConfigString(test.Config)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	dtos, err := schema.GenerateAlterScripts(test.Delta, generatorConfig)
	if test.Error != nil {
		if err == nil {
			t.Errorf("expected error: %s, but got no error", *test.Error)
		} else if err.Error() != *test.Error {
			t.Errorf("expected error: %s, but got: %s", *test.Error, err.Error())
		}
		return
	}
	if err != nil {
		t.Fatalf("Failed to generate scripts: %v", err)
	}

	expected := strings.TrimSpace(*test.Output)
	actual := strings.TrimSpace(JoinScripts(dtos))
	assert.Equal(t, expected, actual)
}

// JoinScripts concatenates every script of dtos, separated by blank lines.
func JoinScripts(dtos []schema.ScriptDto) string {
	var builder strings.Builder
	for _, dto := range dtos {
		for _, script := range dto.Scripts {
			if builder.Len() > 0 {
				builder.WriteString("\n\n")
			}
			builder.WriteString(script.Script)
		}
	}
	if builder.Len() > 0 {
		builder.WriteString("\n")
	}
	return builder.String()
}

func WriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

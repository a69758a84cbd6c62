// fix-tests regenerates the `output` of YAML test cases whose expectation no longer matches the
// compiler. Review the diff before committing.
package main

import (
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/sqldef/deltadef/config"
	"github.com/sqldef/deltadef/schema"
	"github.com/sqldef/deltadef/testutil"
)

type TestFailure struct {
	TestName string
	YamlFile string
	Expected string
	Actual   string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	pattern := "schema/testdata/*.yml"
	if len(os.Args) > 1 && os.Args[1] != "" {
		pattern = os.Args[1]
	}

	files, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	var failures []TestFailure
	for _, file := range files {
		fileFailures, err := collectFailures(file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		failures = append(failures, fileFailures...)
	}

	fmt.Printf("Found %d failing tests\n", len(failures))

	fixed := 0
	for _, failure := range failures {
		if err := updateYamlFile(failure.YamlFile, failure.TestName, "output", failure.Actual); err != nil {
			log.Printf("Failed to fix test %s: %v", failure.TestName, err)
		} else {
			fmt.Printf("Fixed test: %s in %s\n", failure.TestName, filepath.Base(failure.YamlFile))
			fixed++
		}
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Total failures: %d\n", len(failures))
	fmt.Printf("Fixed: %d\n", fixed)
	fmt.Printf("Failed to fix: %d\n", len(failures)-fixed)

	return nil
}

func collectFailures(file string) ([]TestFailure, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var tests map[string]testutil.TestCase
	if err := yaml.Unmarshal(data, &tests); err != nil {
		return nil, err
	}

	var failures []TestFailure
	for _, name := range slices.Sorted(maps.Keys(tests)) {
		test := tests[name]
		// Error expectations are maintained by hand
		if test.Output == nil {
			continue
		}

		generatorConfig, err := config.ParseGeneratorConfigString(test.Config)
		if err != nil {
			return nil, fmt.Errorf("test case '%s': %w", name, err)
		}
		dtos, err := schema.GenerateAlterScripts(test.Delta, generatorConfig)
		if err != nil {
			log.Printf("Skipping test %s: %v", name, err)
			continue
		}

		expected := strings.TrimSpace(*test.Output)
		actual := strings.TrimSpace(testutil.JoinScripts(dtos))
		if expected != actual {
			failures = append(failures, TestFailure{
				TestName: name,
				YamlFile: file,
				Expected: expected,
				Actual:   actual,
			})
		}
	}
	return failures, nil
}

// updateYamlFile replaces the block scalar of field inside testName, keeping the rest of the file
// byte for byte.
func updateYamlFile(filename, testName, field, newValue string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	var result []string

	inTest := false
	testIndent := 0
	replaced := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " "))

		if trimmed == testName+":" {
			inTest = true
			testIndent = indent
			result = append(result, line)
			continue
		}

		// Another key at the same or lower indent level ends the test
		if inTest && trimmed != "" && indent <= testIndent {
			inTest = false
		}

		if inTest && strings.HasPrefix(trimmed, field+": |") {
			fieldIndent := indent
			result = append(result, line)
			for _, vline := range strings.Split(newValue, "\n") {
				if vline == "" {
					result = append(result, "")
					continue
				}
				result = append(result, strings.Repeat(" ", fieldIndent+2)+vline)
			}

			// Skip the old content
			for i+1 < len(lines) {
				nextLine := lines[i+1]
				nextTrimmed := strings.TrimSpace(nextLine)
				nextIndent := len(nextLine) - len(strings.TrimLeft(nextLine, " "))
				if nextTrimmed != "" && nextIndent <= fieldIndent {
					break
				}
				i++
			}
			if i+1 < len(lines) {
				result = append(result, "")
			}
			inTest = false
			replaced = true
			continue
		}

		result = append(result, line)
	}

	if !replaced {
		return fmt.Errorf("field '%s' of test '%s' is not a block scalar", field, testName)
	}
	return os.WriteFile(filename, []byte(strings.Join(result, "\n")), 0644)
}

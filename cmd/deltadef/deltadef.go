package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sqldef/deltadef"
	"github.com/sqldef/deltadef/config"
	"github.com/sqldef/deltadef/util"
)

// version and revision are set via -ldflags
var version = "dev"
var revision = "HEAD"

// Return parsed options. Positional arguments are delta files, like --file.
func parseOptions(args []string) *deltadef.Options {
	// Track parsed configs in order
	var configs []config.GeneratorConfig

	var opts struct {
		File                   []string `long:"file" description:"Read the delta document from the file, rather than stdin (can be specified multiple times)" value-name:"delta_file"`
		SkipModifiedContainers bool     `long:"skip-modified-containers" description:"Emit only CREATE and DROP for databases"`
		SortTables             bool     `long:"sort-tables" description:"Create tables after the tables their foreign keys reference"`
		EnableDrop             bool     `long:"enable-drop" description:"Print DROP statements instead of commenting them out as skipped"`
		Format                 string   `long:"format" description:"Output format (sql, json)" value-name:"format" default:"sql"`
		Concurrency            int      `long:"concurrency" description:"Number of delta files compiled in parallel (0 is sequential, negative is unlimited)" value-name:"num" default:"0"`
		Debug                  bool     `long:"debug" description:"Dump the parsed delta model to stderr"`
		Help                   bool     `long:"help" description:"Show this help"`
		Version                bool     `long:"version" description:"Show this version"`

		// Custom handlers for config flags to preserve order
		Config       func(string) error `long:"config" description:"YAML file to specify: containers.skip_modified, sort_tables_by_dependencies, templates (can be specified multiple times)"`
		ConfigInline func(string) error `long:"config-inline" description:"YAML object to specify: containers.skip_modified, sort_tables_by_dependencies, templates (can be specified multiple times)"`
	}

	opts.Config = func(path string) error {
		c, err := config.ParseGeneratorConfig(path)
		if err != nil {
			return err
		}
		configs = append(configs, c)
		return nil
	}
	opts.ConfigInline = func(yaml string) error {
		c, err := config.ParseGeneratorConfigString(yaml)
		if err != nil {
			return err
		}
		configs = append(configs, c)
		return nil
	}

	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[OPTIONS] [delta.json...] < delta.json"
	args, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.Version {
		fmt.Printf("%s (%s)\n", version, revision)
		os.Exit(0)
	}

	// flags are applied after the config files
	configs = append(configs, config.GeneratorConfig{
		Containers:               config.ContainerConfig{SkipModified: opts.SkipModifiedContainers},
		SortTablesByDependencies: opts.SortTables,
	})

	return &deltadef.Options{
		DeltaFiles:  deltadef.ParseFiles(append(opts.File, args...)),
		EnableDrop:  opts.EnableDrop,
		Format:      opts.Format,
		Concurrency: opts.Concurrency,
		Debug:       opts.Debug,
		Config:      config.MergeGeneratorConfigs(configs),
	}
}

func main() {
	util.InitSlog()
	options := parseOptions(os.Args[1:])

	if err := deltadef.Run(os.Stdout, options); err != nil {
		log.Fatal(err)
	}
}

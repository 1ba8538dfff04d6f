package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cybergodev/parjson"
)

// globalFlags are shared by every command
type globalFlags struct {
	configFile    *string
	threads       *int
	verbose       *bool
	validatePaths *bool
}

// newParser builds a parser from the config file and flags. reg may be nil.
func (g *globalFlags) newParser(reg prometheus.Registerer) (*parjson.Parser, error) {
	cfg := parjson.DefaultConfig()
	if *g.configFile != "" {
		loaded, err := parjson.LoadConfigFile(*g.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *g.threads > 0 {
		cfg.Threads = *g.threads
	}
	// paths come from the operator, not from untrusted input
	cfg.ValidateFilePath = *g.validatePaths
	cfg.EnableMetrics = true
	cfg.Registerer = reg

	level := slog.LevelWarn
	if *g.verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return parjson.New(cfg), nil
}

func newGlobalFlags(app *kingpin.Application) *globalFlags {
	return &globalFlags{
		configFile: app.Flag("config.file", "YAML configuration file.").String(),
		threads:    app.Flag("threads", "Worker count per document, 0 uses the configured value.").Short('t').Int(),
		verbose:    app.Flag("verbose", "Log planner decisions.").Short('v').Bool(),
		validatePaths: app.Flag("validate-paths",
			"Reject traversing paths and system directories.").Bool(),
	}
}

func main() {
	app := kingpin.New("parjson", "Parse and format JSON documents on parallel workers.")
	g := newGlobalFlags(app)

	addParseCommand(app, g)
	addFormatCommand(app, g)
	addStatsCommand(app, g)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}

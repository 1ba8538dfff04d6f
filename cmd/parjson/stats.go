package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// statsCommand parses files and prints the parser's counters
type statsCommand struct {
	g       *globalFlags
	files   *[]string
	metrics *bool
}

func (cmd *statsCommand) run(*kingpin.ParseContext) error {
	reg := prometheus.NewRegistry()
	p, err := cmd.g.newParser(reg)
	if err != nil {
		exitWithErr(err)
	}
	defer p.Close()

	parseFiles(p, *cmd.files, 0)
	s := p.Stats()

	bold := color.New(color.Bold)
	bold.Println("Operations:")
	fmt.Printf("\ttotal: %d, successful: %d, failed: %d\n", s.Operations, s.Successful, s.Failed)
	fmt.Printf("\tparallel: %d, fallbacks: %d\n", s.Parallel, s.Fallbacks)
	bold.Println("Volume:")
	fmt.Printf("\ttokens: %s, bytes: %s\n", humanize.Comma(s.Tokens), humanize.Bytes(uint64(s.Bytes)))
	bold.Println("Timing:")
	fmt.Printf("\tavg: %v, max: %v\n", s.AvgTime, s.MaxTime)
	if len(s.ErrorsByType) > 0 {
		bold.Println("Errors:")
		for code, n := range s.ErrorsByType {
			fmt.Printf("\t%s: %d\n", code, n)
		}
	}

	if *cmd.metrics {
		families, err := reg.Gather()
		if err != nil {
			exitWithErr(fmt.Errorf("failed to gather metrics: %w", err))
		}
		enc := expfmt.NewEncoder(os.Stdout, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range families {
			if err := enc.Encode(mf); err != nil {
				exitWithErr(err)
			}
		}
	}
	return nil
}

func addStatsCommand(app *kingpin.Application, g *globalFlags) {
	cmd := &statsCommand{g: g}
	c := app.Command("stats", "Parse files and print parser statistics.").Action(cmd.run)
	cmd.metrics = c.Flag("metrics", "Also print Prometheus metrics in text format.").Bool()
	cmd.files = c.Arg("file", "JSON files to parse.").Required().ExistingFiles()
}

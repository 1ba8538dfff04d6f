package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
)

// formatCommand re-serializes one document
type formatCommand struct {
	g      *globalFlags
	file   *string
	pretty *bool
	out    *string
}

func (cmd *formatCommand) run(*kingpin.ParseContext) error {
	p, err := cmd.g.newParser(nil)
	if err != nil {
		exitWithErr(err)
	}
	defer p.Close()

	doc, err := p.ParseFile(*cmd.file)
	if err != nil {
		exitWithErr(fmt.Errorf("failed to parse %s: %w", *cmd.file, err))
	}

	w := os.Stdout
	if *cmd.out != "" && *cmd.out != "-" {
		f, err := os.Create(*cmd.out)
		if err != nil {
			exitWithErr(fmt.Errorf("failed to create output: %w", err))
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	bw := bufio.NewWriter(w)
	if _, err := p.WriteTo(bw, doc.Root(), p.Config().Threads, *cmd.pretty); err != nil {
		exitWithErr(err)
	}
	if !*cmd.pretty {
		_ = bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		exitWithErr(fmt.Errorf("failed to write output: %w", err))
	}
	return nil
}

func addFormatCommand(app *kingpin.Application, g *globalFlags) {
	cmd := &formatCommand{g: g}
	c := app.Command("format", "Parse a file and print it back as JSON.").Action(cmd.run)
	cmd.pretty = c.Flag("pretty", "Print with spacing and newlines after closers.").Bool()
	cmd.out = c.Flag("out", "Output file, - for stdout.").Short('o').Default("-").String()
	cmd.file = c.Arg("file", "JSON file, optionally gzip-compressed.").Required().ExistingFile()
}

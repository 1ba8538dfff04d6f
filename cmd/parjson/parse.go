package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/cybergodev/parjson"
)

// parseCommand parses each file and prints its token count
type parseCommand struct {
	g     *globalFlags
	files *[]string
	jobs  *int
}

type parseResult struct {
	name     string
	size     int64
	tokens   int
	chunks   int
	duration time.Duration
	err      error
}

func (cmd *parseCommand) run(*kingpin.ParseContext) error {
	p, err := cmd.g.newParser(nil)
	if err != nil {
		exitWithErr(err)
	}
	defer p.Close()

	results := parseFiles(p, *cmd.files, *cmd.jobs)
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Printf("%s: FAIL (%d) %v\n", r.name, statusOf(r.err), r.err)
			continue
		}
		fmt.Printf("%s: ok, %s, %d tokens, %d chunks, %v\n",
			r.name, humanize.Bytes(uint64(r.size)), r.tokens, r.chunks, r.duration.Round(time.Microsecond))
	}
	if failed > 0 {
		exitWithErr(fmt.Errorf("%d of %d files failed", failed, len(results)))
	}
	return nil
}

// parseFiles parses files concurrently; each document is also split
// across the parser's own workers
func parseFiles(p *parjson.Parser, files []string, jobs int) []parseResult {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]parseResult, len(files))
	var eg errgroup.Group
	eg.SetLimit(jobs)
	for i, name := range files {
		eg.Go(func() error {
			r := parseResult{name: name}
			if fi, err := os.Stat(name); err == nil {
				r.size = fi.Size()
			}
			start := time.Now()
			doc, err := p.ParseFile(name)
			r.duration = time.Since(start)
			if err != nil {
				r.err = err
			} else {
				r.tokens, r.chunks = doc.TokenCount(), doc.Chunks()
			}
			results[i] = r
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func statusOf(err error) int {
	var e *parjson.Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return -100
}

func addParseCommand(app *kingpin.Application, g *globalFlags) {
	cmd := &parseCommand{g: g}
	c := app.Command("parse", "Parse files and report token counts.").Action(cmd.run)
	cmd.jobs = c.Flag("jobs", "Files parsed at once, 0 uses the CPU count.").Short('j').Int()
	cmd.files = c.Arg("file", "JSON files, optionally gzip-compressed.").Required().ExistingFiles()
}

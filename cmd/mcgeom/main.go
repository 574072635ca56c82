// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/mcgeom/internal/deck"
	"github.com/cpmech/mcgeom/internal/diag"
	"github.com/cpmech/mcgeom/internal/exprx"
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/resolve"
)

func main() {

	// options
	erase := flag.Bool("erase", true, "truncate the log file instead of appending")
	verbose := flag.Bool("verbose", true, "print the accumulated warning log at the end of a run")
	workers := flag.Int("workers", 4, "FILL/LATTICE worker pool size")
	flag.Parse()

	exitCode := 0

	// catch programmer-mistake panics the same way main.go does; data
	// failures never reach here, they return through geomerr instead
	defer func() {
		if r := recover(); r != nil {
			chk.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.PfRed("PANIC: %v\n", r)
			os.Exit(1)
		}
		os.Exit(exitCode)
	}()

	if len(flag.Args()) < 1 {
		chk.Panic("please provide an input deck filename. Ex.: model.i")
	}
	fnamepath := flag.Arg(0)

	io.PfWhite("\nmcgeom -- Monte-Carlo geometry resolver\n\n")

	logPath := fnamepath + ".mcgeom.log"
	logFlags := os.O_CREATE | os.O_WRONLY
	if *erase {
		logFlags |= os.O_TRUNC
	} else {
		logFlags |= os.O_APPEND
	}
	logFile, err := os.OpenFile(logPath, logFlags, 0644)
	if err != nil {
		io.Pfred("cannot open log file %q: %v\n", logPath, err)
		exitCode = 1
		return
	}
	defer logFile.Close()
	sink := diag.New(logFile)

	if err := run(fnamepath, sink, *workers); err != nil {
		exitCode = geomerr.ExitCode(err)
		io.PfRed("ERROR: %v\n", err)
	} else {
		io.Pfgreen("resolved %q successfully\n", fnamepath)
	}

	if *verbose {
		for _, w := range sink.Warnings() {
			io.Pfyel("WARN: %s\n", w)
		}
	}
}

// run reads and resolves one deck end to end (spec.md §2's C1/C5-C10
// data flow): parse the raw file into cell/surface/TR blocks, load
// every surface card into a shared SurfaceMap (expanding macrobodies
// along the way), then resolve every cell card in dependency order,
// expanding FILL/LATTICE cells as they're reached.
func run(fnamepath string, sink *diag.Sink, workers int) error {
	raw, err := io.ReadFile(fnamepath)
	if err != nil {
		return geomerr.New(geomerr.BadCard, "cannot read %q: %v", fnamepath, err)
	}

	warn := func(msg string) { sink.Warn("%s", msg) }

	d, err := deck.Parse(string(raw), exprx.LiteralOracle{}, warn)
	if err != nil {
		return err
	}
	for _, line := range d.DataCardLines {
		sink.Warn("data card not in geometry scope, passed through unexamined: %s", strings.TrimSpace(line))
	}

	p := resolve.NewPipeline(exprx.LiteralOracle{}, sink, workers)

	for _, c := range d.SurfaceCards {
		if err := p.LoadSurfaceCard(c, d.TrTable); err != nil {
			return err
		}
	}

	ctx := context.Background()
	cells, err := p.ResolveCells(ctx, d.CellCards, d.TrTable)
	if err != nil {
		return err
	}

	reportCells(cells, 0)
	return nil
}

// reportCells prints each resolved cell's name and final equation,
// indenting FILL-expanded elements under their parent.
func reportCells(cells []resolve.ResolvedCell, depth int) {
	prefix := strings.Repeat("  ", depth)
	for _, c := range cells {
		fmt.Printf("%scell %s: %s\n", prefix, c.Name, c.Equation)
		if len(c.Elements) > 0 {
			reportCells(c.Elements, depth+1)
		}
	}
}

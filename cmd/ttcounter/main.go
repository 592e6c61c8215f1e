// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command ttcounter runs test scenarios against the counter models.
//
//	ttcounter run [--model core|part|gates] [--gate-clock] SCRIPT...
//	ttcounter demo [NAME]
//	ttcounter list
//
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/db47h/ttcounter/core"
	"github.com/db47h/ttcounter/counter"
	"github.com/db47h/ttcounter/internal/logger"
	"github.com/db47h/ttcounter/tb"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		slog.Error("ttcounter failed", "error", err)
		os.Exit(1)
	}
}

var runFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "model, m",
		Usage: "model to run: core, part or gates",
		Value: "core",
	},
	cli.BoolFlag{
		Name:  "gate-clock",
		Usage: "hold the counter while ena is low instead of only masking outputs",
	},
	cli.BoolFlag{
		Name:  "trace",
		Usage: "log every clock cycle",
	},
	cli.BoolFlag{
		Name:  "keep-going, k",
		Usage: "do not stop a scenario at the first mismatch",
	},
	cli.UintFlag{
		Name:  "spc",
		Usage: "simulation steps per clock cycle for the part and gates models",
		Value: counter.DefaultSPC,
	},
	cli.StringFlag{
		Name:  "log",
		Usage: "also write the log to `FILE`; debug records then only go to the file",
	},
	cli.BoolFlag{
		Name:  "debug",
		Usage: "like --trace, and copy debug records to stderr when --log is set",
	},
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "ttcounter"
	app.Usage = "run test scenarios against the 8 bits counter"
	app.Version = "1.0.0"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "run scenario scripts",
			ArgsUsage: "SCRIPT...",
			Flags:     runFlags,
			Action:    runScripts,
		},
		{
			Name:      "demo",
			Usage:     "run a built-in scenario",
			ArgsUsage: "[NAME]",
			Flags:     runFlags,
			Action:    runDemo,
		},
		{
			Name:   "list",
			Usage:  "list built-in scenarios",
			Action: listScenarios,
		},
	}
	return app
}

// session holds the settings of a run or demo command.
type session struct {
	c    *cli.Context
	log  *slog.Logger
	mode core.Mode
	done func() error
}

func newSession(c *cli.Context) (*session, error) {
	s := &session{c: c, done: func() error { return nil }}
	if c.Bool("gate-clock") {
		s.mode = core.GateClock
	}
	level := slog.LevelInfo
	debug := c.Bool("debug")
	if c.Bool("trace") || debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if name := c.String("log"); name != "" {
		f, err := os.Create(name)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create log file")
		}
		s.done = f.Close
		h = logger.NewHandler(f, opts, c.App.ErrWriter, debug)
	} else {
		h = logger.NewHandler(c.App.ErrWriter, opts, nil, debug)
	}
	s.log = slog.New(h)
	slog.SetDefault(s.log)
	return s, nil
}

func (s *session) newDUT() (tb.DUT, error) {
	spc := s.c.Uint("spc")
	switch m := s.c.String("model"); m {
	case "core":
		return tb.NewModel(s.mode), nil
	case "part":
		return counter.NewBench(counter.Spec(s.mode).NewPart, spc)
	case "gates":
		g, err := counter.Gates(s.mode)
		if err != nil {
			return nil, err
		}
		return counter.NewBench(g, spc)
	default:
		return nil, errors.Errorf("unknown model %q", m)
	}
}

// run runs all scenarios, each on a fresh DUT, and returns an error if any
// of them failed.
func (s *session) run(scs []*tb.Scenario) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s.log.Info("start", "model", s.c.String("model"), "mode", s.mode.String(), "scenarios", len(scs))
	failed := 0
	for _, sc := range scs {
		dut, err := s.newDUT()
		if err != nil {
			return err
		}
		err = runScenario(ctx, dut, sc, tb.Options{Logger: s.log, KeepGoing: s.c.Bool("keep-going")})
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "interrupted")
		}
		if err != nil {
			failed++
			fmt.Fprintf(s.c.App.Writer, "FAIL %s: %v\n", sc.Name, err)
			continue
		}
		fmt.Fprintf(s.c.App.Writer, "PASS %s (%d cycles)\n", sc.Name, sc.Cycles())
	}
	if failed > 0 {
		return errors.Errorf("%d of %d scenario(s) failed", failed, len(scs))
	}
	return nil
}

// runScenario runs sc on dut and closes it. A failure to close the DUT fails
// the scenario unless it already failed, in which case it is only logged.
func runScenario(ctx context.Context, dut tb.DUT, sc *tb.Scenario, opts tb.Options) (err error) {
	defer func() {
		cerr := dut.Close()
		if cerr == nil {
			return
		}
		if err == nil {
			err = errors.Wrap(cerr, "failed to close DUT")
			return
		}
		slog.Error("failed to close DUT", "scenario", sc.Name, "error", cerr)
	}()
	return tb.Run(ctx, dut, sc, opts)
}

func loadFile(name string) (*tb.Scenario, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open scenario")
	}
	defer f.Close()
	return tb.Parse(name, f)
}

func runScripts(c *cli.Context) (err error) {
	if c.NArg() == 0 {
		cli.ShowCommandHelp(c, "run")
		return errors.New("no scenario script given")
	}
	var scs []*tb.Scenario
	for _, name := range c.Args() {
		sc, err := loadFile(name)
		if err != nil {
			return err
		}
		scs = append(scs, sc)
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.done(); err == nil {
			err = cerr
		}
	}()
	return s.run(scs)
}

func runDemo(c *cli.Context) (err error) {
	name := "basic"
	if c.NArg() > 0 {
		name = c.Args().First()
	}
	sc, err := tb.Load(name)
	if err != nil {
		return err
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.done(); err == nil {
			err = cerr
		}
	}()
	return s.run([]*tb.Scenario{sc})
}

func listScenarios(c *cli.Context) error {
	for _, n := range tb.Builtin() {
		sc, err := tb.Load(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%-8s %s\n", n, sc.Doc)
	}
	return nil
}

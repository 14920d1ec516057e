// This file is part of crobots - https://github.com/db47h/crobots
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/db47h/crobots/arena"
	"github.com/db47h/crobots/asm"
	"github.com/db47h/crobots/config"
	"github.com/db47h/crobots/telemetry"
	"github.com/db47h/crobots/vm"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("crobots.cmd")

type fileList []string

func (f *fileList) String() string     { return "" }
func (f *fileList) Set(s string) error { *f = append(*f, s); return nil }
func (f *fileList) Get() interface{}   { return *f }

var (
	matches   int
	debug     bool
	dump      bool
	watch     bool
	noRawIO   bool
	compile   bool
	verbosity int
	delay     time.Duration
	logName   string
	snapName  string
	cborName  string
	confName  string
	envFiles  fileList
	limit     int64
	seed      int64
	gridSize  int
)

// loadRobot loads a robot program from an assembly source file or from a
// compiled program image (.crb). The robot is named after the file.
func loadRobot(fileName string) (arena.Entrant, error) {
	ext := filepath.Ext(fileName)
	name := strings.TrimSuffix(filepath.Base(fileName), ext)
	if len(name) > arena.MaxNameLen {
		name = name[:arena.MaxNameLen]
	}
	var (
		p   *vm.Program
		err error
	)
	if ext == ".crb" {
		p, err = vm.Load(fileName)
	} else {
		p, err = assemble(fileName)
	}
	if err != nil {
		return arena.Entrant{}, err
	}
	return arena.Entrant{Name: name, Program: p}, nil
}

func assemble(fileName string) (*vm.Program, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	return asm.Assemble(fileName, bufio.NewReader(f))
}

// compileAll assembles source files into program images saved next to them.
func compileAll(files []string) error {
	for _, fn := range files {
		p, err := assemble(fn)
		if err != nil {
			return err
		}
		out := strings.TrimSuffix(fn, filepath.Ext(fn)) + ".crb"
		if err = vm.Save(out, p); err != nil {
			return errors.Wrap(err, out)
		}
		log.Infof("%s: %d instructions saved to %s", fn, len(p.Code), out)
	}
	return nil
}

// loadConfig builds the match configuration: defaults, then the -config file,
// then .env files and CROBOTS_* environment variables, then command line
// flags.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	var err error
	if confName != "" {
		if cfg, err = config.Load(confName); err != nil {
			return nil, err
		}
	}
	env, err := config.LoadEnv(envFiles...)
	if err != nil {
		return nil, err
	}
	if err = cfg.ApplyEnv(env); err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "limit":
			cfg.CycleLimit = limit
		case "seed":
			cfg.Seed = seed
		case "grid":
			cfg.GridSize = gridSize
		}
	})
	return cfg, cfg.Validate()
}

// watcher returns an observer that renders each interval to w.
func watcher(w *bufio.Writer, cfg *config.Config) arena.Observer {
	var from int64
	return func(s *arena.Snapshot) {
		w.WriteString("\x1b[H\x1b[2J")
		telemetry.Render(w, s, from, cfg)
		w.Flush()
		from = s.Cycle
		time.Sleep(delay)
	}
}

// watchGrid fits the grid size to the console.
func watchGrid(cfg *config.Config) *config.Config {
	cols, rows := consoleSize(os.Stdout)()
	if rows == 0 {
		return cfg
	}
	g := min(cfg.GridSize, rows-12, cols-2)
	if g < 32 || g == cfg.GridSize {
		return cfg
	}
	c := *cfg
	c.GridSize = g
	return &c
}

// listenKeys signals skip each time q is pressed.
func listenKeys(skip chan<- struct{}) {
	b := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(b); err != nil {
			return
		}
		if b[0] == 'q' || b[0] == 'Q' {
			select {
			case skip <- struct{}{}:
			default:
			}
		}
	}
}

// playMatch runs a match until it is over, ctx is done or a value is received
// on skip. Only the match is stopped by skip.
func playMatch(ctx context.Context, skip <-chan struct{}, a *arena.Arena) (arena.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-skip:
			cancel()
		case <-ctx.Done():
		}
	}()
	return a.RunContext(ctx)
}

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] robot.s|robot.crb ...\n\nOptions:\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	var err error
	defer func() { atExit(err) }()

	flag.IntVar(&matches, "m", 1, "number of matches to play")
	flag.StringVar(&snapName, "snapshot", "", "write the snapshot log to `filename`")
	flag.StringVar(&cborName, "cbor", "", "write CBOR encoded snapshots to `filename`")
	flag.BoolVar(&watch, "watch", false, "render the battlefield at each interval")
	flag.DurationVar(&delay, "delay", 100*time.Millisecond, "delay between frames in watch mode")
	flag.BoolVar(&noRawIO, "noraw", false, "disable raw terminal IO in watch mode")
	flag.StringVar(&confName, "config", "", "load the configuration from TOML file `filename`")
	flag.Var(&envFiles, "env", "load CROBOTS_* variables from .env file `filename` (can be specified multiple times)")
	flag.Int64Var(&limit, "limit", 0, "cycle limit per match")
	flag.Int64Var(&seed, "seed", 0, "random seed of the first match")
	flag.IntVar(&gridSize, "grid", 0, "grid size for the ASCII battlefield")
	flag.BoolVar(&compile, "c", false, "compile assembly files to program images and exit")
	flag.IntVar(&verbosity, "v", 0, "log verbosity")
	flag.StringVar(&logName, "log", "", "write logs to `filename` instead of stderr")
	flag.BoolVar(&debug, "debug", false, "enable debug logs and diagnostics")
	flag.BoolVar(&dump, "dump", false, "dump robot CPUs at the end of each match")
	flag.Usage = usage
	flag.Parse()

	if debug {
		verbosity = max(verbosity, 2)
	}
	if logName != "" {
		commonlog.Configure(verbosity, &logName)
	} else {
		commonlog.Configure(verbosity, nil)
	}

	files := flag.Args()
	if compile {
		err = compileAll(files)
		return
	}
	if len(files) < 1 || len(files) > arena.MaxRobots {
		err = errors.Errorf("expected 1 to %d robot files, got %d", arena.MaxRobots, len(files))
		return
	}
	if matches < 1 {
		err = errors.Errorf("invalid number of matches %d", matches)
		return
	}
	cfg, err := loadConfig()
	if err != nil {
		return
	}
	entrants := make([]arena.Entrant, len(files))
	for i, fn := range files {
		if entrants[i], err = loadRobot(fn); err != nil {
			return
		}
	}

	stdout := bufio.NewWriter(os.Stdout)
	defer stdout.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	skip := make(chan struct{}, 1)

	var rec *telemetry.Recorder
	if snapName != "" {
		var f *os.File
		if f, err = os.Create(snapName); err != nil {
			err = errors.Wrap(err, "create failed")
			return
		}
		defer f.Close()
		w := bufio.NewWriter(f)
		defer w.Flush()
		rec = telemetry.NewRecorder(w, cfg)
	}
	var enc *telemetry.Encoder
	if cborName != "" {
		var f *os.File
		if f, err = os.Create(cborName); err != nil {
			err = errors.Wrap(err, "create failed")
			return
		}
		defer f.Close()
		w := bufio.NewWriter(f)
		defer w.Flush()
		enc = telemetry.NewEncoder(w)
	}
	wcfg := cfg
	if watch {
		if !noRawIO {
			if tearDown, rerr := setRawIO(); rerr == nil {
				defer tearDown()
				go listenKeys(skip)
			} else {
				log.Warningf("%v", rerr)
			}
		}
		wcfg = watchGrid(cfg)
	}

	wins := make([]int, len(entrants))
	ties := 0
	for m := 0; m < matches; m++ {
		mcfg := *cfg
		mcfg.Seed = cfg.Seed + int64(m)
		id := uuid.New()
		log.Infof("match %d: %s, seed %d", m+1, id, mcfg.Seed)
		var opts []arena.Option
		if rec != nil {
			if err = rec.Begin(id); err != nil {
				return
			}
			opts = append(opts, arena.OnInterval(rec.Observe))
		}
		if enc != nil {
			opts = append(opts, arena.OnInterval(enc.Observe))
		}
		if watch {
			opts = append(opts, arena.OnInterval(watcher(stdout, wcfg)))
		}
		var a *arena.Arena
		if a, err = arena.New(&mcfg, entrants, opts...); err != nil {
			return
		}
		res, rerr := playMatch(ctx, skip, a)
		printResult(stdout, m+1, entrants, res)
		if dump {
			if err = dumpRobots(stdout, a); err != nil {
				return
			}
		}
		if rec != nil && rec.Err() != nil {
			err = rec.Err()
			return
		}
		if enc != nil && enc.Err() != nil {
			err = enc.Err()
			return
		}
		if ctx.Err() != nil {
			log.Noticef("interrupted")
			break
		}
		if rerr != nil {
			log.Noticef("match %d stopped", m+1)
			continue
		}
		if res.Winner >= 0 {
			wins[res.Winner]++
		} else {
			ties++
		}
	}
	if matches > 1 {
		printTotals(stdout, entrants, wins, ties)
	}
}

func printResult(w io.Writer, n int, es []arena.Entrant, res arena.Result) {
	fmt.Fprintf(w, "Match %d: ", n)
	if res.Winner >= 0 {
		fmt.Fprintf(w, "robot %d (%s) wins", res.Winner+1, es[res.Winner].Name)
	} else {
		fmt.Fprint(w, "tie")
	}
	fmt.Fprintf(w, " after %d cycles\n", res.Cycles)
	for i, e := range es {
		fmt.Fprintf(w, "  [%d] %-13s damage=%d\n", i+1, e.Name, res.Damage[i])
	}
}

func printTotals(w io.Writer, es []arena.Entrant, wins []int, ties int) {
	fmt.Fprintln(w, "\nTotals:")
	for i, e := range es {
		fmt.Fprintf(w, "  [%d] %-13s wins=%d\n", i+1, e.Name, wins[i])
	}
	fmt.Fprintf(w, "  ties=%d\n", ties)
}

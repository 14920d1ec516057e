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

// The crobots command plays CROBOTS matches between 1 to 4 robots.
//
// Robots are loaded from assembly source files (see package
// github.com/db47h/crobots/asm) or from compiled program images with a .crb
// extension. A robot is named after its file.
//
// Usage:
//
//	crobots [options] robot.s|robot.crb ...
//
//	-c
//		  compile assembly files to program images and exit
//	-cbor filename
//		  write CBOR encoded snapshots to filename
//	-config filename
//		  load the configuration from TOML file filename
//	-debug
//		  enable debug logs and diagnostics
//	-delay duration
//		  delay between frames in watch mode (default 100ms)
//	-dump
//		  dump robot CPUs at the end of each match
//	-env filename
//		  load CROBOTS_* variables from .env file filename (can be specified multiple times)
//	-grid int
//		  grid size for the ASCII battlefield
//	-limit int
//		  cycle limit per match
//	-log filename
//		  write logs to filename instead of stderr
//	-m int
//		  number of matches to play (default 1)
//	-noraw
//		  disable raw terminal IO in watch mode
//	-seed int
//		  random seed of the first match
//	-snapshot filename
//		  write the snapshot log to filename
//	-v int
//		  log verbosity
//	-watch
//		  render the battlefield at each interval
//
// The configuration is built from the defaults, then the -config file, then
// the .env files given with -env and CROBOTS_* environment variables, then the
// -limit, -seed and -grid flags. Match n is played with seed + n - 1.
//
// -watch: clears the screen and renders the battlefield at every interval.
// Unless -noraw is set, the terminal is switched to raw mode and pressing q
// stops the current match; the next one, if any, then starts. Ctrl-C stops
// the current match and skips the remaining ones. The grid is shrunk to fit
// the console if needed.
//
// -snapshot: the snapshot log is a plain text file. It starts with a
// "CROBOTS SNAPSHOT LOG" header, then each match starts with a MATCH line
// followed by one block per interval:
//
//	INTERVAL <start cycle> <end cycle>
//	ROBOT <id> <name> <x> <y> <heading> <speed> <damage>
//	MISSILE <id>.<slot> FLYING|EXPLODING <x> <y> <heading> <remaining range> 0
//	ACTION <id> DRIVE|SCAN|CANNON <heading> <parameter>
//	REWARD <id> <damage dealt - damage taken>
//	---
//
// ROBOT and MISSILE lines are written for the state at the start and at the
// end of the interval. Distances are in meters.
//
// -c: each source file robot.s is saved as robot.crb in the same directory.
//
// -debug: sets the log verbosity to debug and prints a full stack trace on
// errors.
package main

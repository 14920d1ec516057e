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

// Package config holds the read-only parameters of a match.
//
// A Config starts from Default, can be loaded from a TOML file with Load and
// overridden by CROBOTS_* variables read from the environment or from .env
// files with LoadEnv and ApplyEnv. Keys are the kebab-case field tags, so
// cycle-limit in a TOML file is CROBOTS_CYCLE_LIMIT in the environment.
package config

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// EnvPrefix is the prefix of environment variables that override
// configuration keys.
const EnvPrefix = "CROBOTS_"

// Config holds the match parameters.
type Config struct {
	FieldSize    int   `toml:"field-size"`    // battlefield side in meters
	MaxInstr     int   `toml:"max-instr"`     // program size limit in instructions
	CycleBudget  int   `toml:"cycle-budget"`  // instructions per robot and cycle
	MotionCycles int   `toml:"motion-cycles"` // cycles between motion updates
	Interval     int   `toml:"interval"`      // cycles between snapshots
	CycleLimit   int64 `toml:"cycle-limit"`
	StackSize    int   `toml:"stack-size"`  // VM stack cells, locals included
	FrameDepth   int   `toml:"frame-depth"` // VM call depth
	GridSize     int   `toml:"grid-size"`   // ASCII battlefield side in characters
	Seed         int64 `toml:"seed"`
	LogActions   bool  `toml:"log-actions"`
	LogDamage    bool  `toml:"log-damage"`
}

// Default returns the configuration of a classic match.
func Default() *Config {
	return &Config{
		FieldSize:    1024,
		MaxInstr:     1000,
		CycleBudget:  1,
		MotionCycles: 15,
		Interval:     30,
		CycleLimit:   500000,
		StackSize:    500,
		FrameDepth:   64,
		GridSize:     128,
		Seed:         1,
		LogActions:   true,
		LogDamage:    true,
	}
}

// MaxX returns the battlefield width in meters.
func (c *Config) MaxX() int { return c.FieldSize }

// MaxY returns the battlefield height in meters.
func (c *Config) MaxY() int { return c.FieldSize }

// MisRange returns the maximum missile range in meters: 70% of the field size.
func (c *Config) MisRange() int { return c.FieldSize * 7 / 10 }

type bounds struct {
	key      string
	v        int64
	min, max int64
}

// Validate checks that every field is in range.
func (c *Config) Validate() error {
	for _, b := range []bounds{
		{"field-size", int64(c.FieldSize), 100, 10000},
		{"max-instr", int64(c.MaxInstr), 1, 1 << 16},
		{"cycle-budget", int64(c.CycleBudget), 1, 1 << 20},
		{"motion-cycles", int64(c.MotionCycles), 1, 1 << 20},
		{"interval", int64(c.Interval), 1, 1 << 30},
		{"cycle-limit", c.CycleLimit, 1, 1 << 40},
		{"stack-size", int64(c.StackSize), 16, 1 << 20},
		{"frame-depth", int64(c.FrameDepth), 1, 1 << 16},
		{"grid-size", int64(c.GridSize), 32, 256},
	} {
		if b.v < b.min || b.v > b.max {
			return errors.Errorf("config: %s = %d out of range [%d, %d]", b.key, b.v, b.min, b.max)
		}
	}
	return nil
}

// Load reads the TOML file at path on top of the default configuration and
// validates the result. Unknown keys are an error.
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "config: cannot parse %s", path)
	}
	if u := md.Undecoded(); len(u) > 0 {
		keys := make([]string, len(u))
		for i, k := range u {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err = c.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}

// LoadEnv returns the CROBOTS_* variables defined in the given .env files and
// in the process environment, the latter taking precedence. Missing files are
// an error.
func LoadEnv(files ...string) (map[string]string, error) {
	env := make(map[string]string)
	if len(files) > 0 {
		m, err := godotenv.Read(files...)
		if err != nil {
			return nil, errors.Wrap(err, "config: cannot read env file")
		}
		for k, v := range m {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

// EnvKey returns the environment variable name for a configuration key.
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

func (c *Config) fields() map[string]any {
	return map[string]any{
		"field-size":    &c.FieldSize,
		"max-instr":     &c.MaxInstr,
		"cycle-budget":  &c.CycleBudget,
		"motion-cycles": &c.MotionCycles,
		"interval":      &c.Interval,
		"cycle-limit":   &c.CycleLimit,
		"stack-size":    &c.StackSize,
		"frame-depth":   &c.FrameDepth,
		"grid-size":     &c.GridSize,
		"seed":          &c.Seed,
		"log-actions":   &c.LogActions,
		"log-damage":    &c.LogDamage,
	}
}

// ApplyEnv overrides configuration fields with the matching variables of env,
// then validates the result. Unknown CROBOTS_* variables are an error. On
// error, c is left unchanged.
func (c *Config) ApplyEnv(env map[string]string) error {
	tmp := *c
	byEnv := make(map[string]string)
	fields := tmp.fields()
	for k := range fields {
		byEnv[EnvKey(k)] = k
	}
	names := make([]string, 0, len(env))
	for k := range env {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key, ok := byEnv[name]
		if !ok {
			return errors.Errorf("config: unknown variable %s", name)
		}
		s := strings.TrimSpace(env[name])
		var err error
		switch p := fields[key].(type) {
		case *int:
			var v int64
			v, err = strconv.ParseInt(s, 0, 0)
			*p = int(v)
		case *int64:
			*p, err = strconv.ParseInt(s, 0, 64)
		case *bool:
			*p, err = strconv.ParseBool(s)
		}
		if err != nil {
			return errors.Wrapf(err, "config: %s", name)
		}
	}
	if err := tmp.Validate(); err != nil {
		return err
	}
	*c = tmp
	return nil
}

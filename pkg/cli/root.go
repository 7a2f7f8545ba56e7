// Copyright (c) 2025, The mkagent Authors. All rights reserved.
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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bashclub/mkagent/pkg/config"
	"github.com/bashclub/mkagent/pkg/defaults"
	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"github.com/bashclub/mkagent/pkg/logging"
	"github.com/urfave/cli/v3"
)

const (
	name           = "mkagentd"
	versionDefault = "dev"
	envPrefix      = "MKAGENTD_"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the command line with os.Args. It is called by main.main.
func Execute() {
	if err := newRootCmd().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "check_mk compatible monitoring agent",
		Version:               fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		EnableShellCompletion: true,
		Flags:                 globalFlags(),
		Before:                initLogger,
		DefaultCommand:        "serve",
		Commands: []*cli.Command{
			serveCmd(),
			dumpCmd(),
			statusCmd(),
			stopCmd(),
		},
	}
}

func env(key string) cli.ValueSourceChain {
	return cli.EnvVars(envPrefix + key)
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "configuration file",
			Value:   defaults.ConfigFile,
			Sources: env("CONFIG"),
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "TCP port collectors connect to",
			Sources: env("PORT"),
		},
		&cli.StringFlag{
			Name:    "onlyfrom",
			Usage:   "comma separated addresses or CIDR prefixes allowed to connect",
			Sources: env("ONLYFROM"),
		},
		&cli.StringFlag{
			Name:    "skipcheck",
			Usage:   "comma separated producer names not to run",
			Sources: env("SKIPCHECK"),
		},
		&cli.StringFlag{
			Name:    "encrypt",
			Usage:   "pre-shared passphrase enabling the encryption envelope",
			Sources: env("ENCRYPT"),
		},
		&cli.StringFlag{
			Name:    "localdir",
			Usage:   "directory of local check scripts",
			Sources: env("LOCALDIR"),
		},
		&cli.StringFlag{
			Name:    "spooldir",
			Usage:   "directory of spool files",
			Sources: env("SPOOLDIR"),
		},
		&cli.StringFlag{
			Name:    "pidfile",
			Usage:   "PID file guarding against a second agent",
			Sources: env("PIDFILE"),
		},
		&cli.StringFlag{
			Name:    "metrics-address",
			Usage:   "address of the HTTP metrics and health listener (disabled when empty)",
			Sources: env("METRICS_ADDRESS"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars(envPrefix+"LOG_LEVEL", logging.EnvLogLevel),
		},
		&cli.BoolFlag{
			Name:    "trace",
			Usage:   "write report assembly spans to stderr",
			Sources: env("TRACE"),
		},
	}
}

// initLogger configures slog after flags are parsed so --log-level applies
// before any command runs.
func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := cmd.String("log-level")
	logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", level)
	return ctx, nil
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	cfg, err := config.LoadOrDefault(path, !cmd.IsSet("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("onlyfrom") {
		cfg.OnlyFrom = config.SplitList(cmd.String("onlyfrom"))
	}
	if cmd.IsSet("skipcheck") {
		cfg.SkipCheck = config.SplitList(cmd.String("skipcheck"))
	}
	if cmd.IsSet("encrypt") {
		cfg.Encrypt = cmd.String("encrypt")
	}
	if cmd.IsSet("localdir") {
		cfg.LocalDir = cmd.String("localdir")
	}
	if cmd.IsSet("spooldir") {
		cfg.SpoolDir = cmd.String("spooldir")
	}
	if cmd.IsSet("pidfile") {
		cfg.PIDFile = cmd.String("pidfile")
	}
	if cmd.IsSet("metrics-address") {
		cfg.MetricsAddress = cmd.String("metrics-address")
	}

	if err := cfg.Validate(); err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.CodeOf(err), "invalid configuration", err,
			map[string]any{"path": path})
	}
	return cfg, nil
}

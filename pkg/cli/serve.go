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
	"log/slog"

	"github.com/bashclub/mkagent/pkg/agent"
	"github.com/bashclub/mkagent/pkg/tracing"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve reports to collectors until stopped",
		Description: `Listen on the agent port and answer every collector connection with a
report. The process stays in the foreground; run it under systemd or a
supervisor. SIGTERM and SIGINT stop the agent after the report in progress
is delivered, SIGHUP only logs that the agent is alive.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			tp, shutdown, err := tracing.New(tracing.Config{
				Enabled:        cmd.Bool("trace"),
				ServiceName:    name,
				ServiceVersion: version,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					slog.Warn("failed to flush spans", "error", err)
				}
			}()

			a, err := agent.New(cfg, agent.WithVersion(version), agent.WithTracerProvider(tp))
			if err != nil {
				return err
			}

			slog.Info("starting agent",
				"version", version,
				"port", cfg.Port,
				"encrypted", cfg.Encrypted(),
				"producers", len(a.Producers()))

			return a.Serve(ctx)
		},
	}
}

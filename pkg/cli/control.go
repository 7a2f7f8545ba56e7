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

	"github.com/bashclub/mkagent/pkg/agent"
	"github.com/urfave/cli/v3"
	"golang.org/x/sys/unix"
)

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Report whether an agent is running",
		Description: `Look up the agent in the PID file and send it SIGHUP, which it answers
with a log line. Exits non-zero when no agent is running.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return signalAgent(cmd, unix.SIGHUP, "running")
		},
	}
}

func stopCmd() *cli.Command {
	return &cli.Command{
		Name:  "stop",
		Usage: "Stop a running agent",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return signalAgent(cmd, unix.SIGTERM, "stopping")
		},
	}
}

func signalAgent(cmd *cli.Command, sig unix.Signal, state string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pid, err := agent.SignalRunning(cfg.PIDFile, sig)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "%s %s with pid %d\n", name, state, pid)
	return nil
}

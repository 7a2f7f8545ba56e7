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
	"io"
	"os"
	"strings"

	"github.com/bashclub/mkagent/pkg/agent"
	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"github.com/bashclub/mkagent/pkg/report"
	"github.com/bashclub/mkagent/pkg/serializer"
	"github.com/urfave/cli/v3"
)

func dumpCmd() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Assemble one report and print it",
		Description: `Run every producer once, print the report to stdout and the error and
stack of each failed producer to stderr. The text format is exactly what a
collector receives in plaintext mode.

With --decrypt the report is sealed with the configured passphrase and
opened again before printing, which verifies the encryption envelope.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   fmt.Sprintf("output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
				Value:   string(serializer.FormatText),
			},
			&cli.BoolFlag{
				Name:  "decrypt",
				Usage: "seal and reopen the report with the configured passphrase",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := serializer.ParseFormat(cmd.String("format"))
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			a, err := agent.New(cfg, agent.WithVersion(version))
			if err != nil {
				return err
			}

			return dump(ctx, a, format, cmd.Bool("decrypt"), os.Stdout, os.Stderr)
		},
	}
}

func dump(ctx context.Context, a *agent.Agent, format serializer.Format, decrypt bool, stdout, stderr io.Writer) error {
	rep := a.Orchestrator().Assemble(ctx)
	printFailures(stderr, rep)

	if decrypt {
		if err := verifyEnvelope(a, rep); err != nil {
			return err
		}
		fmt.Fprintln(stderr, "envelope round trip ok")
	}

	w, err := serializer.NewWriter(format, stdout)
	if err != nil {
		return err
	}
	return w.Serialize(ctx, rep)
}

// verifyEnvelope seals the report text and checks that opening it yields
// the same bytes.
func verifyEnvelope(a *agent.Agent, rep *report.Report) error {
	s := a.Sealer()
	if s == nil {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "--decrypt requires an encryption passphrase")
	}

	plain := []byte(rep.Text())
	opened, err := s.Open(s.Seal(plain))
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to open sealed report", err)
	}
	if string(opened) != string(plain) {
		return cnserrors.New(cnserrors.ErrCodeInternal, "sealed report does not round trip")
	}
	return nil
}

func printFailures(w io.Writer, rep *report.Report) {
	for _, f := range rep.Failures {
		fmt.Fprintf(w, "producer %s failed: %s\n", f.Name, f.Error)
		if f.Stack != "" {
			fmt.Fprintln(w, f.Stack)
		}
	}
	if len(rep.Skipped) > 0 {
		fmt.Fprintf(w, "skipped: %s\n", strings.Join(rep.Skipped, ","))
	}
}

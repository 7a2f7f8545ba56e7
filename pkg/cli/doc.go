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

// Package cli implements the mkagentd command line.
//
// # Commands
//
//	mkagentd [serve]   run the agent in the foreground (default)
//	mkagentd dump      assemble one report and print it
//	mkagentd status    ask a running agent to log that it is alive
//	mkagentd stop      stop a running agent
//
// # Configuration
//
// Settings come from the YAML file named by --config, then from flags and
// their MKAGENTD_* environment variables, which take precedence. A missing
// file is only an error when --config was given explicitly.
//
// # Examples
//
// Serve with a collector allowlist:
//
//	mkagentd --onlyfrom 10.0.0.5,192.168.10.0/24
//
// Inspect the report the collector would receive, including failures:
//
//	mkagentd dump --format yaml
//
// Check the encryption envelope with the configured passphrase:
//
//	mkagentd --encrypt secret dump --decrypt
package cli

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

// Package errors provides structured error types for configuration and
// startup failures of the agent.
//
// Runtime faults of producers and external commands never surface as errors
// to the collector; they are recorded in the report instead. Everything that
// should stop the agent from starting (bad port, malformed allowlist entry,
// missing encryption key) is reported through a StructuredError.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeInvalidRequest,
//	    "invalid onlyfrom entry",
//	    parseErr,
//	    map[string]any{
//	        "entry": "10.0.0.300",
//	        "file":  "/etc/mkagentd/mkagentd.yaml",
//	    },
//	)
package errors

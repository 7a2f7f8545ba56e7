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

// Package file parses small line-oriented system files such as
// /etc/os-release or /proc pseudo files.
//
// # Usage
//
//	p := file.NewParser(
//	    file.WithKVDelimiter("="),
//	    file.WithVTrimChars(`"'`),
//	)
//	release, err := p.GetMap("/etc/os-release")
//
// Content already in memory, such as command output, is parsed with Lines
// and Map.
//
// Files larger than the configured maximum or not valid UTF-8 are rejected.
package file

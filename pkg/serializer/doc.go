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

// Package serializer renders agent data for terminals and HTTP clients.
//
// # Supported Formats
//
// Text:
//   - Values implementing Texter are written verbatim, which is how a report
//     is dumped in check_mk wire form
//   - Other values fall back to a flattened FIELD/VALUE table
//
// JSON:
//   - Indented, suitable for scripting against `mkagentd dump`
//
// YAML:
//   - gopkg.in/yaml.v3 encoding
//
// # Usage
//
//	w, err := serializer.NewWriter(serializer.FormatJSON, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	if err := w.Serialize(ctx, rep); err != nil {
//	    return err
//	}
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, data)
package serializer

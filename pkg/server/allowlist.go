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

package server

import (
	"net"
	"net/netip"
	"strings"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
)

// Allowlist restricts report requests by peer address. Entries are single
// addresses or CIDR prefixes. An empty allowlist admits every peer.
type Allowlist struct {
	addrs    map[netip.Addr]struct{}
	prefixes []netip.Prefix
}

// ParseAllowlist parses addresses and prefixes. Blank entries are ignored.
func ParseAllowlist(entries []string) (*Allowlist, error) {
	a := &Allowlist{addrs: make(map[netip.Addr]struct{})}
	for _, raw := range entries {
		e := strings.TrimSpace(raw)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
					"invalid allowlist prefix", err, map[string]any{"entry": e})
			}
			if p.Addr().Is4In6() && p.Bits() >= 96 {
				p = netip.PrefixFrom(p.Addr().Unmap(), p.Bits()-96)
			}
			a.prefixes = append(a.prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
				"invalid allowlist address", err, map[string]any{"entry": e})
		}
		a.addrs[addr.Unmap()] = struct{}{}
	}
	return a, nil
}

// Empty reports whether the allowlist admits every peer.
func (a *Allowlist) Empty() bool {
	return a == nil || (len(a.addrs) == 0 && len(a.prefixes) == 0)
}

// Len returns the number of entries.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.addrs) + len(a.prefixes)
}

// AllowsAddr reports whether addr may request a report.
func (a *Allowlist) AllowsAddr(addr netip.Addr) bool {
	if a.Empty() {
		return true
	}
	addr = addr.Unmap().WithZone("")
	if _, ok := a.addrs[addr]; ok {
		return true
	}
	for _, p := range a.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Allows reports whether the peer of a connection may request a report.
// Peers whose address cannot be determined are refused unless the allowlist
// is empty.
func (a *Allowlist) Allows(peer net.Addr) bool {
	if a.Empty() {
		return true
	}
	if tcp, ok := peer.(*net.TCPAddr); ok {
		return a.AllowsAddr(tcp.AddrPort().Addr())
	}
	ap, err := netip.ParseAddrPort(peer.String())
	if err != nil {
		return false
	}
	return a.AllowsAddr(ap.Addr())
}

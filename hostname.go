// Copyright 2025 The ArrowDNS Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resolver

import "strings"

// maxHostnameLength and maxLabelLength are the DNS wire-format octet
// bounds (RFC 1035 §3.1): a name is at most 253 octets and each label is
// at most 63.
const (
	maxHostnameLength = 253
	maxLabelLength    = 63
)

// validHostname reports whether host is a syntactically valid hostname,
// grounded on original_source/src/DNSResolver.cpp's isValidHostname and
// isValidHostnameLabel: non-empty, at most 253 octets, dot-separated labels
// of 1-63 octets each, alphanumeric plus hyphen, no leading or trailing
// hyphen in a label.
func validHostname(host string) bool {
	if host == "" || len(host) > maxHostnameLength {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if !validHostnameLabel(label) {
			return false
		}
	}
	return true
}

func validHostnameLabel(label string) bool {
	if len(label) == 0 || len(label) > maxLabelLength {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

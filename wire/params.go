// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wire

import (
	"net/url"
	"strings"
)

// LookupParam scans an ampersand-joined key=value string for key. Pairs
// that do not split into exactly two non-empty-valued segments are skipped;
// the first match wins. The value is percent-decoded, or returned as sent
// if it does not decode.
func LookupParam(raw, key string) (string, bool) {
	if raw == "" {
		return "", false
	}
	for pair := range strings.SplitSeq(raw, "&") {
		kv := strings.Split(pair, "=")
		if len(kv) != 2 || kv[1] == "" {
			continue
		}
		if kv[0] != key {
			continue
		}
		if v, err := url.QueryUnescape(kv[1]); err == nil {
			return v, true
		}
		return kv[1], true
	}
	return "", false
}

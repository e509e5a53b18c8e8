// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package target

import (
	"net/url"
	"path/filepath"
)

// Normalize processes a given compile target and converts it into a standard
// form.
//
// Targets may be any valid URI or file path. File paths and file URIs become
// rooted paths which are resolved against each search root of the file
// system. All non-file URIs are left as-is with the expectation that they
// will be handled by some other implementation.
func Normalize(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	target = filepath.ToSlash(target)
	if !filepath.IsAbs(target) {
		return filepath.Join("/", target)
	}
	return filepath.Clean(target)
}

// NormalizeAll normalizes a list of targets and drops repeats while keeping
// the first occurrence in place. Target order is declaration order.
func NormalizeAll(targets []string) []string {
	seen := make(map[string]bool, len(targets))
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		n := Normalize(t)
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

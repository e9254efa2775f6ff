// Package version carries the one semver value etfdump reports in its
// --version output.
package version

import "github.com/blang/semver"

// Current is the running binary's version, following _examples/kryptco-kr's
// own version_darwin.go pattern of a package-level semver.MustParse.
var Current = semver.MustParse("0.1.0")

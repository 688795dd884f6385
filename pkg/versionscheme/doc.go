// Package versionscheme infers the versioning shape of a container image tag
// and picks the newest registry tag that follows the same shape.
//
// A tag such as "3.9-alpine" is split into runs of digits, letters and
// separators. Digit runs are generalized to any width while letters and
// separators stay literal, so "3.10-alpine" shares the shape but "3.9",
// "latest" and "edge" do not. Tags of one shape are ordered by their
// numeric components, left to right.
package versionscheme

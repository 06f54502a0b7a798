// Package keydiff compares the key structure of two localization trees and
// reports the key paths that exist on only one side.
package keydiff

import (
	"fmt"

	"github.com/k0ns0l/localedrift/internal/locale"
)

// PathSeparator joins key segments into a key path.
const PathSeparator = "."

// Side identifies which of the two compared trees holds a key.
type Side string

const (
	// FirstOnly means the key exists in the first tree and is missing from the second.
	FirstOnly Side = "first_only"
	// SecondOnly means the key exists in the second tree and is missing from the first.
	SecondOnly Side = "second_only"
)

// String returns the side's wire name.
func (s Side) String() string {
	return string(s)
}

// MissingIn names the file that lacks the key.
func (s Side) MissingIn() string {
	if s == SecondOnly {
		return "first file"
	}
	return "second file"
}

// Record is a single key path present in one tree but not the other.
type Record struct {
	Path string `json:"path" yaml:"path"`
	Side Side   `json:"side" yaml:"side"`
}

// String renders the record the way the CLI prints it.
func (r Record) String() string {
	return fmt.Sprintf("%s missing in %s", r.Path, r.Side.MissingIn())
}

// Summary counts records per side.
type Summary struct {
	Total      int `json:"total" yaml:"total"`
	FirstOnly  int `json:"first_only" yaml:"first_only"`
	SecondOnly int `json:"second_only" yaml:"second_only"`
}

// Diff compares the key sets of left and right, descending into keys that
// hold a mapping on both sides. Records for keys of left come first, in
// left's key order with nested records in place, followed by records for
// keys only right has, in right's key order.
//
// Values are never compared. A key holding a mapping on one side and a
// scalar on the other is treated as present on both and is not descended
// into. A nil tree behaves like an empty one.
func Diff(left, right *locale.Tree, rootLabel string) []Record {
	records := []Record{}
	return appendDiff(records, left, right, rootLabel)
}

func appendDiff(records []Record, left, right *locale.Tree, prefix string) []Record {
	for _, key := range left.Keys() {
		path := joinPath(prefix, key)

		// presence in right is checked before either value is inspected
		if !right.Has(key) {
			records = append(records, Record{Path: path, Side: FirstOnly})
			continue
		}

		leftSub, leftOK := left.Subtree(key)
		rightSub, rightOK := right.Subtree(key)
		if leftOK && rightOK {
			records = appendDiff(records, leftSub, rightSub, path)
		}
	}

	for _, key := range right.Keys() {
		if !left.Has(key) {
			records = append(records, Record{Path: joinPath(prefix, key), Side: SecondOnly})
		}
	}

	return records
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + PathSeparator + key
}

// Identical reports whether a diff found no differences.
func Identical(records []Record) bool {
	return len(records) == 0
}

// Summarize counts the records on each side.
func Summarize(records []Record) Summary {
	summary := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Side {
		case FirstOnly:
			summary.FirstOnly++
		case SecondOnly:
			summary.SecondOnly++
		}
	}
	return summary
}

// Paths returns the key paths of the records on the given side, in order.
func Paths(records []Record, side Side) []string {
	var paths []string
	for _, r := range records {
		if r.Side == side {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

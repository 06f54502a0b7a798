package keydiff

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k0ns0l/localedrift/internal/locale"
)

func lines(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.String())
	}
	return out
}

func TestDiff_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		left     *locale.Tree
		right    *locale.Tree
		expected []string
	}{
		{
			name:     "identical nested trees",
			left:     locale.Of("a", locale.Of("b", 1)),
			right:    locale.Of("a", locale.Of("b", 1)),
			expected: []string{},
		},
		{
			name:  "disjoint top-level keys",
			left:  locale.Of("a", 1),
			right: locale.Of("b", 1),
			expected: []string{
				"root.a missing in second file",
				"root.b missing in first file",
			},
		},
		{
			name:     "nested key missing on the right",
			left:     locale.Of("a", locale.Of("b", 1, "c", 2)),
			right:    locale.Of("a", locale.Of("b", 1)),
			expected: []string{"root.a.c missing in second file"},
		},
		{
			name:     "both empty",
			left:     locale.New(),
			right:    locale.New(),
			expected: []string{},
		},
		{
			name:     "mapping against scalar is ignored",
			left:     locale.Of("a", locale.Of("b", 1)),
			right:    locale.Of("a", 1),
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Diff(tt.left, tt.right, "root")
			assert.Equal(t, tt.expected, lines(records))
			assert.Equal(t, len(tt.expected) == 0, Identical(records))
		})
	}
}

func TestDiff_MissingSubtreeDoesNotDescend(t *testing.T) {
	left := locale.Of(
		"settings", locale.Of("theme", "dark", "font", locale.Of("size", 12)),
	)
	right := locale.Of("other", "x")

	records := Diff(left, right, "root")

	assert.Equal(t, []string{
		"root.settings missing in second file",
		"root.other missing in first file",
	}, lines(records))
}

func TestDiff_Ordering(t *testing.T) {
	left := locale.Of(
		"z", 1,
		"common", locale.Of("only_left", 1, "shared", 2),
		"a", 1,
	)
	right := locale.Of(
		"y", 1,
		"common", locale.Of("shared", 2, "only_right", 3),
		"b", 1,
	)

	records := Diff(left, right, "root")

	// left's keys first with nested records in place, then right-only keys
	assert.Equal(t, []Record{
		{Path: "root.z", Side: FirstOnly},
		{Path: "root.common.only_left", Side: FirstOnly},
		{Path: "root.common.only_right", Side: SecondOnly},
		{Path: "root.a", Side: FirstOnly},
		{Path: "root.y", Side: SecondOnly},
		{Path: "root.b", Side: SecondOnly},
	}, records)
}

func TestDiff_EmptyRootLabel(t *testing.T) {
	left := locale.Of("a", locale.Of("b", 1, "c", 1))
	right := locale.Of("a", locale.Of("b", 1), "d", 1)

	assert.Equal(t, []string{
		"a.c missing in second file",
		"d missing in first file",
	}, lines(Diff(left, right, "")))
}

func TestDiff_NilTrees(t *testing.T) {
	tree := locale.Of("a", 1)

	assert.Equal(t, []string{"root.a missing in second file"}, lines(Diff(tree, nil, "root")))
	assert.Equal(t, []string{"root.a missing in first file"}, lines(Diff(nil, tree, "root")))
	assert.Empty(t, Diff(nil, nil, "root"))
}

func TestDiff_ListsAreOpaque(t *testing.T) {
	left := locale.Of("items", []interface{}{map[string]interface{}{"x": 1}})
	right := locale.Of("items", []interface{}{})

	assert.Empty(t, Diff(left, right, "root"))
}

func TestDiff_DeepNesting(t *testing.T) {
	build := func(leaf string) *locale.Tree {
		tree := locale.Of(leaf, "v")
		for i := 9; i >= 0; i-- {
			tree = locale.Of(fmt.Sprintf("l%d", i), tree)
		}
		return tree
	}

	records := Diff(build("x"), build("y"), "root")

	require.Len(t, records, 2)
	assert.Equal(t, "root.l0.l1.l2.l3.l4.l5.l6.l7.l8.l9.x", records[0].Path)
	assert.Equal(t, FirstOnly, records[0].Side)
	assert.Equal(t, "root.l0.l1.l2.l3.l4.l5.l6.l7.l8.l9.y", records[1].Path)
	assert.Equal(t, SecondOnly, records[1].Side)
}

// fixtures used by the property tests below
func propertyFixtures() []*locale.Tree {
	return []*locale.Tree{
		locale.New(),
		locale.Of("a", 1),
		locale.Of("a", locale.Of("b", 1, "c", locale.Of("d", true))),
		locale.Of("a", locale.Of("b", 2), "e", nil, "f", []interface{}{1}),
		locale.Of("e", "x", "a", 1),
		locale.Of("a", locale.Of("c", locale.Of("d", false, "g", 0)), "h", locale.Of()),
	}
}

func TestDiff_Symmetry(t *testing.T) {
	fixtures := propertyFixtures()
	for i, a := range fixtures {
		for j, b := range fixtures {
			forward := Diff(a, b, "root")
			backward := Diff(b, a, "root")

			assert.ElementsMatch(t, Paths(forward, FirstOnly), Paths(backward, SecondOnly), "pair %d,%d", i, j)
			assert.ElementsMatch(t, Paths(forward, SecondOnly), Paths(backward, FirstOnly), "pair %d,%d", i, j)
		}
	}
}

func TestDiff_Identity(t *testing.T) {
	for i, a := range propertyFixtures() {
		assert.Empty(t, Diff(a, a, "root"), "fixture %d", i)
	}
}

func TestDiff_IgnoresValues(t *testing.T) {
	left := locale.Of("greeting", "Hello", "nested", locale.Of("count", 1, "flag", true))
	right := locale.Of("greeting", "Hola", "nested", locale.Of("count", 99, "flag", nil), "extra", 1)

	before := Diff(left, right, "root")

	right.Set("greeting", "Olá")
	nested, _ := right.Subtree("nested")
	nested.Set("count", "many")

	assert.Equal(t, before, Diff(left, right, "root"))
}

func TestDiff_NoDuplicates(t *testing.T) {
	fixtures := propertyFixtures()
	for _, a := range fixtures {
		for _, b := range fixtures {
			seen := make(map[Record]bool)
			for _, r := range Diff(a, b, "root") {
				assert.False(t, seen[r], "duplicate record %s", r)
				seen[r] = true
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{Path: "root.a", Side: FirstOnly},
		{Path: "root.b", Side: SecondOnly},
		{Path: "root.c", Side: SecondOnly},
	}

	assert.Equal(t, Summary{Total: 3, FirstOnly: 1, SecondOnly: 2}, Summarize(records))
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSide_MissingIn(t *testing.T) {
	assert.Equal(t, "second file", FirstOnly.MissingIn())
	assert.Equal(t, "first file", SecondOnly.MissingIn())
	assert.Equal(t, "first_only", FirstOnly.String())
}

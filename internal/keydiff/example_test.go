package keydiff_test

import (
	"fmt"

	"github.com/k0ns0l/localedrift/internal/keydiff"
	"github.com/k0ns0l/localedrift/internal/locale"
)

// ExampleDiff compares an English and a Portuguese locale
func ExampleDiff() {
	en := locale.Of(
		"home", locale.Of("title", "Welcome", "subtitle", "Hello there"),
		"footer", "Bye",
	)
	pt := locale.Of(
		"home", locale.Of("title", "Bem-vindo"),
		"footer", "Tchau",
		"banner", "Promoção",
	)

	for _, record := range keydiff.Diff(en, pt, "root") {
		fmt.Println(record)
	}

	// Output:
	// root.home.subtitle missing in second file
	// root.banner missing in first file
}

// ExampleSummarize counts differences per side
func ExampleSummarize() {
	records := keydiff.Diff(
		locale.Of("a", 1, "b", 2, "c", 3),
		locale.Of("a", 1, "d", 4),
		"",
	)

	summary := keydiff.Summarize(records)
	fmt.Printf("total=%d first_only=%d second_only=%d\n", summary.Total, summary.FirstOnly, summary.SecondOnly)
	fmt.Println(keydiff.Paths(records, keydiff.FirstOnly))

	// Output:
	// total=3 first_only=2 second_only=1
	// [b c]
}

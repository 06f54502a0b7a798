/*
LocaleDrift - localization key drift detection

Compares translation files and reports keys that exist in one locale but
not another, so missing translations are caught before release.
*/
package main

import "github.com/k0ns0l/localedrift/cmd"

func main() {
	cmd.Execute()
}

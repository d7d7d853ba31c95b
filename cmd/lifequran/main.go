// Package main is the single-binary entrypoint for LifeQuran.
package main

import "github.com/lifequran/lifequran/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}

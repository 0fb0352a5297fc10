// Package main is the entry point for the mpvsource application.
package main

import (
	"github.com/mpvsource/mpvsource/cmd"
	"github.com/mpvsource/mpvsource/config"
	"github.com/mpvsource/mpvsource/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}

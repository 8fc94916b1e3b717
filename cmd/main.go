package main

import (
	"os"

	"github.com/openregulatory/regkb/cmd/regkb"
)

func main() {
	if err := regkb.Execute(); err != nil {
		os.Exit(1)
	}
}

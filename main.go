package main

import (
	"os"

	"github.com/ArnaudBarre/bun-dedupe/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

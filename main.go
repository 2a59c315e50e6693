package main

import (
	"os"

	"go.aimuz.me/quill/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(cli.Execute(version + " (" + commit + ", " + date + ")"))
}

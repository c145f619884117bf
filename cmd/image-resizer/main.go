package main

import (
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-resizer/internal/cli"
)

func main() {
	// Initialize logger; the configuration is loaded by the command itself.
	zlog.Init()

	cli.Execute()
}

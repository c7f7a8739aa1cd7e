package main

import (
	"os"

	streamgatecmder "github.com/papercomputeco/streamgate/cmd/streamgate"
)

func main() {
	cmd := streamgatecmder.NewStreamgateCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

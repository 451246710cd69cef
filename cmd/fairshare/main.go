package main

import (
	"os"

	"github.com/armadaproject/fairshare/cmd/fairshare/cmd"
	"github.com/armadaproject/fairshare/internal/common"
)

func main() {
	common.ConfigureLogging()
	root := cmd.RootCmd()
	common.BindCommandlineArguments(root.PersistentFlags())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

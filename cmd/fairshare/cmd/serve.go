package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/fairshare/internal/fairshare"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs a cycle every cycle period and serves metrics",
		RunE:  serve,
	}
	return cmd
}

func serve(_ *cobra.Command, _ []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	return fairshare.Run(config)
}

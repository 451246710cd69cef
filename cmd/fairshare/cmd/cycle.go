package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/armadaproject/fairshare/internal/common/fscontext"
	"github.com/armadaproject/fairshare/internal/fairshare"
)

func cycleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Runs a single cycle and prints the allocations",
		RunE:  runCycle,
	}
	cmd.Flags().Uint32(
		"slots",
		0,
		"Slots to distribute. Defaults to totalSlots of the configuration")
	cmd.Flags().String(
		"counters",
		"",
		"Yaml file of running, pending and ran job counts per entity. Defaults to countersFile of the configuration")
	return cmd
}

func runCycle(cmd *cobra.Command, _ []string) error {
	slots, err := cmd.Flags().GetUint32("slots")
	if err != nil {
		return errors.WithStack(err)
	}
	countersFile, err := cmd.Flags().GetString("counters")
	if err != nil {
		return errors.WithStack(err)
	}

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if slots != 0 {
		config.TotalSlots = slots
	}
	if countersFile != "" {
		config.CountersFile = countersFile
	}

	// Fail early rather than run the cycle without counters.
	if config.CountersFile != "" {
		if _, err := fairshare.LoadCounters(config.CountersFile); err != nil {
			return err
		}
	}

	service, err := fairshare.NewService(config, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	result := service.RunCycle(fscontext.Background())
	fmt.Fprint(cmd.OutOrStdout(), result.Report())
	return nil
}

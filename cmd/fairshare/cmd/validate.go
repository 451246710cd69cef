package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/armadaproject/fairshare/internal/fairshare"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Checks that the configuration describes a valid share tree",
		RunE:  validate,
	}
	return cmd
}

func validate(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	builder, err := fairshare.NewTreeBuilder(config.SpecCacheSize)
	if err != nil {
		return err
	}
	tree, err := builder.BuildTreeFromConfig(config)
	if err != nil {
		return err
	}
	// Leaves are collected by a distribution, which also shows what each would be entitled to.
	fairshare.Distribute(tree, config.TotalSlots)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Share tree is valid: %d entities, %d leaves\n", tree.Size(), len(tree.Leaves()))
	for _, leaf := range tree.Leaves() {
		fmt.Fprintf(out, "  %s %.4f %d\n", leaf.Path, leaf.NormalizedShare, leaf.DesiredServed)
	}
	return nil
}

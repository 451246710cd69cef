package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/armadaproject/fairshare/internal/common"
	commonconfig "github.com/armadaproject/fairshare/internal/common/config"
	"github.com/armadaproject/fairshare/internal/common/logging"
	"github.com/armadaproject/fairshare/internal/fairshare/configuration"
)

const (
	CustomConfigLocation string = "config"
	DefaultConfigPath    string = "./config/fairshare"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fairshare",
		SilenceUsage: true,
		Short:        "Hierarchical fairshare slot allocation",
	}

	cmd.PersistentFlags().StringSlice(
		CustomConfigLocation,
		[]string{},
		"Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)")

	cmd.AddCommand(
		validateCmd(),
		cycleCmd(),
		serveCmd(),
	)

	return cmd
}

func loadConfig() (configuration.Configuration, error) {
	var config configuration.Configuration
	userSpecifiedConfigs := viper.GetStringSlice(CustomConfigLocation)

	if err := common.LoadConfig(&config, DefaultConfigPath, userSpecifiedConfigs, configuration.CustomHooks...); err != nil {
		return config, err
	}
	if err := config.Validate(); err != nil {
		commonconfig.LogValidationErrors(err)
		return config, err
	}
	if err := logging.Configure(config.Logging, os.Stderr); err != nil {
		return config, err
	}
	return config, nil
}

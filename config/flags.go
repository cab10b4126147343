package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ConfigFlagName = "config"
	StoreFlagName  = "store"
)

// BindFlags binds the persistent configuration flags and mirrors them into
// viper so file, env and flag values resolve through one lookup path.
func BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(ConfigFlagName, "config.json", "Path to JSON configuration file, or 'env' to configure from environment variables")
	_ = viper.BindPFlag(ConfigFlagName, cmd.PersistentFlags().Lookup(ConfigFlagName))

	cmd.PersistentFlags().String(StoreFlagName, "./lvldbdata", "Path to the persisted order store")
	_ = viper.BindPFlag(StoreFlagName, cmd.PersistentFlags().Lookup(StoreFlagName))
}

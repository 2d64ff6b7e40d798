package config

import "github.com/spf13/viper"

// setDefaults matches vm.DefaultConfig with an on-disk backend
func setDefaults(v *viper.Viper) {
	v.SetDefault("context.type", "db")
	v.SetDefault("context.db_path", "data/chain.db")
	v.SetDefault("context.cache_size", 1024)

	v.SetDefault("repository_dir", "data/contracts")

	// TGas
	v.SetDefault("gas.prepaid", 30)
	v.SetDefault("gas.max", 300)
	v.SetDefault("gas.base_call", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

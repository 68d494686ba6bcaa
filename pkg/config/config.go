// Package config layers command-line flags over environment variables and
// an optional YAML config file.
//
// Precedence, highest first: flag set on the command line, environment
// variable <PREFIX>_<FLAG> (dashes become underscores), config file key,
// flag default.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Load binds every flag of fs to viper under its own name.
func Load(fs *pflag.FlagSet, envPrefix, file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

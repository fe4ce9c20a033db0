// Package catalogcmd holds the tabletop subcommands that run against a
// catalog service config.
package catalogcmd

import (
	"fmt"
	"strings"

	"github.com/cuihairu/tabletop/internal/cli/common"
	"github.com/cuihairu/tabletop/services/catalog/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeromicro/go-zero/core/conf"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TABLETOP"

// configFlags are shared by every command that reads a catalog config.
type configFlags struct {
	file     string
	includes []string
	section  string
	profile  string
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "config", "etc/catalog.yaml", "catalog config file (yaml)")
	cmd.Flags().StringSliceVar(&f.includes, "include", nil, "extra config files merged in order")
	cmd.Flags().StringVar(&f.section, "section", "", "optional top-level section holding the catalog config")
	cmd.Flags().StringVar(&f.profile, "profile", "", "overlay profiles.<name> from the config")
}

// load reads, merges and validates the config and decodes it into the
// service's go-zero config.
func (f *configFlags) load(strict bool) (server.Config, *viper.Viper, error) {
	v, err := common.LoadWithIncludes(f.file, f.includes)
	if err != nil {
		return server.Config{}, nil, err
	}
	v, err = common.ApplySectionAndProfile(v, f.section, f.profile)
	if err != nil {
		return server.Config{}, nil, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := common.ValidateCatalogConfig(v, strict); err != nil {
		return server.Config{}, nil, fmt.Errorf("config invalid: %w", err)
	}
	c, err := decode(v)
	if err != nil {
		return server.Config{}, nil, err
	}
	return c, v, nil
}

func decode(v *viper.Viper) (server.Config, error) {
	var c server.Config
	b, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return c, err
	}
	if err := conf.LoadFromYamlBytes(b, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func setupLogging(c server.Config) {
	l := c.FileLog
	common.SetupLoggerWithFile(l.Level, l.Format, l.File, l.MaxSize, l.MaxBackups, l.MaxAge, l.Compress)
}

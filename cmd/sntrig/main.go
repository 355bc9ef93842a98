// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Command sntrig runs the tracker trigger emulation on CTW frames.
//
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snemo/trigsim/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sntrig:", err)
		os.Exit(1)
	}
}

// newViper returns the settings store: flags over SNTRIG_* environment
// variables over the configuration file.
//
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SNTRIG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func newRootCmd() *cobra.Command {
	v := newViper()
	root := &cobra.Command{
		Use:   "sntrig",
		Short: "SuperNEMO tracker trigger emulator",
		Long: `sntrig emulates the level one tracker trigger board of the SuperNEMO
demonstrator. Settings are read from a YAML file, then overridden by
SNTRIG_* environment variables and command line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "configuration file (YAML)")
	pf.Int("workers", 0, "tick workers (0 = GOMAXPROCS)")
	pf.String("log-level", "", "log level (overrides config)")
	pf.Int("module", 0, "module number (overrides config)")
	for _, f := range []string{"config", "workers", "log-level", "module"} {
		if err := v.BindPFlag(f, pf.Lookup(f)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(newRunCmd(v), newLUTCmd(v), newLayoutCmd(v))
	return root
}

// loadConfig reads the configuration file, if any, and applies overrides.
//
func loadConfig(v *viper.Viper) (*config.Config, error) {
	c := config.Default()
	if p := v.GetString("config"); p != "" {
		var err error
		if c, err = config.Load(p); err != nil {
			return nil, err
		}
	}
	if v.IsSet("workers") {
		c.Workers = v.GetInt("workers")
	}
	if v.IsSet("log-level") {
		c.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("module") {
		c.Module = v.GetInt("module")
	}
	return c, c.Validate()
}

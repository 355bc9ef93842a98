// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snemo/trigsim/lut"
)

func newLUTCmd(v *viper.Viper) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "lut",
		Short: "Write the trigger memories in LUT format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			tables, err := cfg.Tables()
			if err != nil {
				return err
			}
			return writeTables(dir, tables)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	return cmd
}

// writeTables stores the memories as <dir>/mem1.lut .. <dir>/mem5.lut.
//
func writeTables(dir string, tables lut.Set) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create table directory")
	}
	for id := lut.Mem1; id < lut.NumMemories; id++ {
		if err := tables[id].StoreFile(filepath.Join(dir, id.String()+".lut")); err != nil {
			return err
		}
	}
	return nil
}

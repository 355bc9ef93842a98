// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snemo/trigsim"
	"github.com/snemo/trigsim/lut"
	"github.com/snemo/trigsim/mapping"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the trigger on a frame file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			log, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(err, "create output")
				}
				defer f.Close()
				w = f
			}
			return run(cfg.Geometry(), cfg.Module, cfg.Workers, log, input, w, cfg.Tables)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "frame file (YAML)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "record file (JSON lines), default stdout")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type tableLoader func() (lut.Set, error)

func run(geo trigsim.Geometry, module, workers int, log *logrus.Logger, input string, w io.Writer, tables tableLoader) error {
	ts, err := tables()
	if err != nil {
		return err
	}
	seq, err := trigsim.NewSequencer(
		trigsim.WithGeometry(geo),
		trigsim.Workers(workers),
		trigsim.Logger(log),
	)
	if err != nil {
		return err
	}
	g := seq.Geometry()
	tr := mapping.New(&g, module)
	frames, err := readFrames(input, tr, module)
	if err != nil {
		return err
	}
	if err = seq.Initialize(tr, ts); err != nil {
		return err
	}
	if err = seq.Run(frames); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, r := range seq.Records() {
		if err = enc.Encode(r); err != nil {
			return errors.Wrap(err, "write record")
		}
	}
	log.WithFields(logrus.Fields{
		"run":      seq.RunID().String(),
		"input":    input,
		"records":  len(seq.Records()),
		"decision": seq.Decision(),
	}).Info("tracker trigger decision")
	return nil
}

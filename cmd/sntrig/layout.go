// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snemo/trigsim"
)

func newLayoutCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the zone and sliding zone row layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			g := cfg.Geometry()
			return printLayout(cmd.OutOrStdout(), &g)
		},
	}
}

func printLayout(w io.Writer, g *trigsim.Geometry) error {
	p := trigsim.NewPartitioner(g)
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintln(tw, "zone\trows\twidth\tsliding zones")
	for z := 0; z < trigsim.NumZones; z++ {
		start, stop := p.ZoneRows(z)
		first := trigsim.ZoneSlidingZones(z)
		fmt.Fprintf(tw, "%d\t%d-%d\t%d\t%d-%d\n", z, start, stop, stop-start+1, first, first+trigsim.SlidingPerZone-1)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "sliding zone\trows\twidth\t")
	for i := 0; i < trigsim.NumSlidingZones; i++ {
		start, stop := p.SlidingZoneRows(i)
		fmt.Fprintf(tw, "%d\t%d-%d\t%d\t\n", i, start, stop, stop-start+1)
	}
	return tw.Flush()
}

package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/snemo/trigsim/config"
	"github.com/snemo/trigsim/lut"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Validate())
	require.Equal(t, 4, c.Geometry().NearSourceLayers)

	s, err := c.Tables()
	require.NoError(t, err)
	for id := lut.Mem1; id < lut.NumMemories; id++ {
		require.NotNil(t, s[id], id.String())
	}
}

func TestDecode(t *testing.T) {
	src := `
module: 1
workers: 3
log_level: debug
programs:
  mem1:
    min_inner: 2
  mem2:
    mode: pattern
`
	c, err := config.Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 1, c.Module)
	require.Equal(t, 3, c.Workers)
	require.Equal(t, 2, c.Programs.Mem1.MinInner)
	require.Equal(t, 1, c.Programs.Mem1.MinOuter, "missing keys keep defaults")
	require.Equal(t, lut.Mem2Pattern, c.Programs.Mem2.Mode)
	require.Equal(t, 4, c.NearSourceLayers)

	s, err := c.Tables()
	require.NoError(t, err)
	require.Equal(t, uint32(0), s[lut.Mem1].Fetch(1), "one inner hit below min_inner")
	require.Equal(t, uint32(lut.Inner), s[lut.Mem1].Fetch(3))

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	rt, err := config.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, c.Programs, rt.Programs)
}

func TestDecode_maxGap(t *testing.T) {
	src := `
programs:
  mem1:
    mode: max_gap
    max_gap: 1
`
	c, err := config.Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, lut.Mem1MaxGap, c.Programs.Mem1.Mode)

	s, err := c.Tables()
	require.NoError(t, err)
	require.Equal(t, uint32(0), s[lut.Mem1].Fetch(1<<0|1<<3), "gap of 2 layers")
	require.Equal(t, uint32(lut.Inner), s[lut.Mem1].Fetch(1<<0|1<<2))

	_, err = config.Decode(strings.NewReader("programs:\n  mem1:\n    mode: max_gap\n    max_gap: 9\n"))
	require.Error(t, err)
}

func TestDecode_errors(t *testing.T) {
	for name, src := range map[string]string{
		"unknown key":  "foo: 1\n",
		"log level":    "log_level: loud\n",
		"near source":  "near_source_layers: 12\n",
		"module":       "module: -1\n",
		"mem2 mode":    "programs:\n  mem2:\n    mode: guess\n",
		"syntax error": "module: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Decode(strings.NewReader(src))
			require.Error(t, err)
		})
	}
}

func TestLoad_tables(t *testing.T) {
	dir := t.TempDir()
	tb, err := lut.Build("all inner", 9, 2, 0, func(a uint32) uint32 {
		if a != 0 {
			return lut.Inner
		}
		return 0
	})
	require.NoError(t, err)
	require.NoError(t, tb.StoreFile(filepath.Join(dir, "mem1.lut")))
	cfgFile := filepath.Join(dir, "trig.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("tables:\n  mem1: mem1.lut\n"), 0o644))

	c, err := config.Load(cfgFile)
	require.NoError(t, err)
	s, err := c.Tables()
	require.NoError(t, err)
	require.Equal(t, "all inner", s[lut.Mem1].Description())
	require.Equal(t, uint32(lut.Inner), s[lut.Mem1].Fetch(1<<8))

	require.NoError(t, os.WriteFile(cfgFile, []byte("tables:\n  mem3: nope.lut\n"), 0o644))
	c, err = config.Load(cfgFile)
	require.NoError(t, err)
	_, err = c.Tables()
	require.Error(t, err)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestLogger(t *testing.T) {
	c := config.Default()
	c.LogLevel = "warn"
	var buf bytes.Buffer
	l, err := c.Logger(&buf)
	require.NoError(t, err)
	require.Equal(t, logrus.WarnLevel, l.GetLevel())
	l.Info("hidden")
	l.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

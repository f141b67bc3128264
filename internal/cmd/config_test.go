package cmd_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/dualsense-cmd/dualsense/internal/cmd"
	"github.com/dualsense-cmd/dualsense/internal/config"
	"github.com/dualsense-cmd/dualsense/spatial"
)

func TestConfigInitMonitorJSON(t *testing.T) {
	c := cmd.ConfigInit{Command: "monitor", Format: "json"}
	data, err := c.Render()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, float64(100), got["poll_rate"])
	assert.Equal(t, "standard", got["mode"])
	assert.Equal(t, false, got["json"])
	assert.Equal(t, []any{float64(0), float64(255), float64(0)}, got["led"])

	sp, ok := got["spatial"].(map[string]any)
	require.True(t, ok, "spatial section")
	assert.Equal(t, "linear", sp["velocity_curve"])
	assert.Equal(t, 200.0, sp["max_linear_speed"])
	assert.Equal(t, 0.92, sp["gyro_weight"])
	assert.Equal(t, 0.12, sp["deadzone"])

	lg, ok := got["log"].(map[string]any)
	require.True(t, ok, "log section")
	assert.Equal(t, "info", lg["level"])
	assert.Equal(t, "text", lg["format"])
	assert.Contains(t, lg, "raw_file")
}

func TestConfigInitYAMLAndTOML(t *testing.T) {
	y, err := (&cmd.ConfigInit{Command: "monitor", Format: "yaml"}).Render()
	require.NoError(t, err)
	var yv map[string]any
	require.NoError(t, yaml.Unmarshal(y, &yv))
	assert.Contains(t, yv, "spatial")
	assert.Contains(t, yv, "poll_rate")

	tm, err := (&cmd.ConfigInit{Command: "monitor", Format: "toml"}).Render()
	require.NoError(t, err)
	tree, err := toml.LoadBytes(tm)
	require.NoError(t, err)
	assert.Equal(t, 0.15, tree.Get("spatial.smoothing_alpha"))
}

func TestConfigInitWritesFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "sub", "monitor.json")
	c := cmd.ConfigInit{Command: "list", Format: "json", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"json": false`)

	assert.Error(t, c.Run(), "existing file without --force")
	c.Force = true
	assert.NoError(t, c.Run())
}

func TestConfigInitUnknownCommand(t *testing.T) {
	_, err := (&cmd.ConfigInit{Command: "serve", Format: "json"}).Render()
	assert.Error(t, err)
}

func TestConfigInitTemplateLoadsThroughKong(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "monitor.json")
	require.NoError(t, (&cmd.ConfigInit{Command: "monitor", Format: "json", Output: dest}).Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	doc["poll_rate"] = 250
	doc["led"] = []any{10, 20, 30}
	doc["mode"] = "axidraw"
	sp := doc["spatial"].(map[string]any)
	sp["max_linear_speed"] = 500
	sp["gyro_weight"] = 0.5
	sp["velocity_curve"] = "cubic"
	lg := doc["log"].(map[string]any)
	lg["raw_file"] = "frames.log"
	lg["level"] = "debug"

	data, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dest, data, 0o644))

	var cli config.CLI
	parser, err := kong.New(&cli,
		kong.Configuration(kong.JSON, dest),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"monitor"})
	require.NoError(t, err)

	m := cli.Monitor
	assert.Equal(t, 250, m.PollRate)
	assert.Equal(t, []uint8{10, 20, 30}, m.LED)
	assert.Equal(t, spatial.ModeAxiDraw, m.Mode)
	assert.Equal(t, 500.0, m.Spatial.MaxLinearSpeed)
	assert.Equal(t, 0.5, m.Spatial.GyroWeight)
	assert.Equal(t, spatial.CurveCubic, m.Spatial.VelocityCurve)
	assert.Equal(t, 0.12, m.Spatial.Deadzone)
	assert.Equal(t, 0.1, m.Beta)
	assert.Equal(t, "frames.log", cli.Log.RawFile)
	assert.Equal(t, "debug", cli.Log.Level)
}

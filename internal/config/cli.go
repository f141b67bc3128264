// Package config defines the command line and config file surface.
package config

import (
	"github.com/dualsense-cmd/dualsense/internal/cmd"
	"github.com/dualsense-cmd/dualsense/internal/log"
)

type CLI struct {
	Config string     `help:"Config file to load (json, yaml or toml)" type:"path" env:"DUALSENSE_CONFIG"`
	Log    log.Config `embed:"" prefix:"log."`

	List    cmd.List          `cmd:"" help:"List connected DualSense controllers"`
	Monitor cmd.Monitor       `cmd:"" help:"Show live controller and spatial state"`
	Cfg     cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
}

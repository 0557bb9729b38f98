// Package cmd defines the snapscroll CLI commands.
package cmd

// LogOptions are shared by all commands.
type LogOptions struct {
	Level string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"SNAPSCROLL_LOG_LEVEL"`
	File  string `help:"Log file path; empty logs to the console" env:"SNAPSCROLL_LOG_FILE"`
	Trace string `help:"Write a per-event trace to this file" env:"SNAPSCROLL_TRACE_FILE"`
}

// CLI is the root command grammar parsed by kong.
type CLI struct {
	ConfigFile string     `help:"Path to a config file" name:"config" env:"SNAPSCROLL_CONFIG"`
	Log        LogOptions `embed:"" prefix:"log."`

	Run     Run           `cmd:"" help:"Filter a device's scroll events through the direction snapper"`
	Devices Devices       `cmd:"" help:"List input event devices"`
	Report  Report        `cmd:"" help:"Summarize a decision recording"`
	Config  ConfigCommand `cmd:"" help:"Configuration file helpers"`
}

package config

import (
	"flag"
	"strings"
)

// Flags are the command-line overrides. Zero values leave the
// configuration untouched.
type Flags struct {
	Config  string
	Library string
	Steps   string
	Hint    string
	Level   string
	LogFile string
	Debug   bool
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.Library, "lib", "", "Path to libassimp")
	fs.StringVar(&f.Steps, "steps", "", "Post-processing steps (Triangulate,GenNormals,... or a preset)")
	fs.StringVar(&f.Hint, "hint", "", "Format hint when reading from stdin (obj, fbx, ...)")
	fs.StringVar(&f.Level, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Also log to this file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	return f
}

// apply applies flag overrides to cfg. A nil f changes nothing.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Library != "" {
		cfg.Library.Path = f.Library
	}
	if f.Steps != "" {
		cfg.Import.Steps = strings.Split(f.Steps, ",")
	}
	if f.Hint != "" {
		cfg.Import.Hint = f.Hint
	}
	if f.Level != "" {
		cfg.Logging.Level = f.Level
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}

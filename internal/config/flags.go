package config

import (
	"flag"
)

// Flags are the command-line overrides. Zero values leave the config
// untouched.
type Flags struct {
	Config        string
	Debug         bool
	SpawnDistance int
	Workers       int
	MetricsAddr   string
	Ticks         int
}

// RegisterFlags binds the overrides to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.SpawnDistance, "spawn-distance", 0, "Spawning distance in chunks")
	fs.IntVar(&f.Workers, "workers", 0, "Chunk task workers")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.IntVar(&f.Ticks, "ticks", 0, "Stop after this many ticks")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.SpawnDistance > 0 {
		cfg.World.SpawningDistance = f.SpawnDistance
	}
	if f.Workers > 0 {
		cfg.Workers.Count = f.Workers
	}
	if f.MetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = f.MetricsAddr
	}
	if f.Ticks > 0 {
		cfg.World.Ticks = f.Ticks
	}
}

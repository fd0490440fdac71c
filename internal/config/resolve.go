package config

import "time"

// Resolved holds the settings an Engine needs, merged from flags and
// config.toml.
type Resolved struct {
	StoragePrefix  string
	IgnoreExtra    []string
	FreezeInterval time.Duration
}

// Resolve applies flag > config.toml > defaults precedence. Empty/zero
// flag values defer to whatever the loaded config (or the built-in
// default) provides.
func Resolve(flagStoragePrefix string, flagFreezeIntervalMS int) (Resolved, error) {
	cfg, err := Load()
	if err != nil {
		return Resolved{}, err
	}

	prefix := flagStoragePrefix
	if prefix == "" {
		prefix = cfg.StoragePrefix
	}
	if prefix == "" {
		prefix = "."
	}

	interval := cfg.FreezeInterval()
	if flagFreezeIntervalMS > 0 {
		interval = time.Duration(flagFreezeIntervalMS) * time.Millisecond
	}

	return Resolved{
		StoragePrefix:  prefix,
		IgnoreExtra:    cfg.IgnoreListExtra,
		FreezeInterval: interval,
	}, nil
}

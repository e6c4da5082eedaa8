// Package config loads bight's settings.
//
// Settings are merged from four sources, later sources winning:
//
//	defaults < config file < BIGHT_* environment < command line flags
//
// The config file is TOML unless its extension is .yaml or .yml. Every
// source produces a nested map; the maps are merged with loader.DeepMerge
// and decoded once onto the defaults.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment loaders over a FileSystem seam
package config

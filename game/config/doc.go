// Package config loads the YAML server settings: bind address, single-player
// debug mode, and an optional override of the level-0 difficulty baseline.
package config

// Package config loads Code Guardian settings from local and global YAML
// files. Fields are pointers so callers can tell "unset" from a zero value
// when layering files under command-line flags.
package config

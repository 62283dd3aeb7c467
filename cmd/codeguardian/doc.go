// Package codeguardian provides the command-line interface for Code Guardian.
// It wires the scan service client, input sources and report writers into
// cobra subcommands (scan, tui, health, verify, etc.).
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/codeguardian/codeguardian/cmd/codeguardian"
//	func main() { codeguardian.Execute() }
package codeguardian

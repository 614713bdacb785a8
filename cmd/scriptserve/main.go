/*
Package main implements the script completion server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

ScriptServe completes identifiers while a user types host scripts in an
embedded editor. It classifies the text left of the cursor (attribute access,
node constructor, string argument of a node factory call, or a bare word),
gathers candidates from the host API, the UI toolkit, the language builtins
and the document itself, and ranks them with a tiered fuzzy matcher.

# Usage

Start the msgpack IPC server with default settings:

	scriptserve serve

Use a custom symbol table and config, with debug logs on stderr:

	scriptserve serve --symbols ./data/symbols.toml --config ./config.toml -d

Try completions interactively:

	scriptserve cli

Rebuild the node catalog cache after installing plugins:

	scriptserve catalog refresh

# Configuration

Runtime configuration lives in a TOML file that is created with defaults if it
does not exist, and reloaded whenever it changes on disk:

	[completion]
	completion_enabled = true
	popup_enabled = true
	fuzzy_enabled = true
	constructible_catalog_enabled = true
	debounce_ms = 60
	max_recent = 20

	[catalog]
	cache_path = ""
	plugin_dirs = []

	[symbols]
	table_path = ""

	[server]
	max_items = 64

# IPC Protocol

The server reads msgpack maps from stdin and writes responses and popup events
to stdout. See package server for the message shapes. Logs go to stderr.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const (
	Version = "0.3.0-beta"
	AppName = "scriptserve"
	gh      = "https://github.com/bastiangx/scriptserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func main() {
	sigHandler()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

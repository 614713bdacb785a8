package main

import (
	"os"
	"sort"

	"github.com/bastiangx/scriptserve/pkg/config"
	"github.com/bastiangx/scriptserve/pkg/server"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var noWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the msgpack IPC server on stdin/stdout",
	Long: `Run the completion server. Requests are msgpack maps on stdin; responses
and popup events are msgpack maps on stdout. Logs are written to stderr.

The config file is watched and reloaded on change unless --no-watch is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the config file on change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	if !noWatch && env.store.Path() != "" {
		w, err := config.Watch(env.store)
		if err != nil {
			log.Warnf("Config reload disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	srv := server.NewServer(env.store, env.engineOptions())
	showStartupInfo(env)
	return srv.Start()
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(env *environment) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("config: ( %s )", env.store.Path())
	if debugMode && env.resolver != nil {
		info := env.resolver.GetRuntimeInfo()
		keys := make([]string, 0, len(info))
		for k := range info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			log.Info("runtime", k, info[k])
		}
	}
	log.Info("status: ready")
}

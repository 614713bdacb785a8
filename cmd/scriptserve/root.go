package main

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/scriptserve/internal/logger"
	"github.com/bastiangx/scriptserve/internal/utils"
	"github.com/bastiangx/scriptserve/pkg/catalog"
	"github.com/bastiangx/scriptserve/pkg/config"
	"github.com/bastiangx/scriptserve/pkg/engine"
	"github.com/bastiangx/scriptserve/pkg/symbols"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

const symbolsFile = "symbols.toml"

var (
	debugMode   bool
	configFlag  string
	symbolsFlag string
)

var rootCmd = &cobra.Command{
	Use:   AppName,
	Short: "ScriptServe - fast completions for host scripting",
	Long: `ScriptServe serves context aware identifier completions for scripts edited
inside a compositing host: host API members, node types, toolkit classes,
language builtins and names already used in the document.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(debugMode)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		printBanner()
		return cmd.Help()
	},
}

func init() {
	rootCmd.SetVersionTemplate("ScriptServe version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Toggle debug mode")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config.toml (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&symbolsFlag, "symbols", "", "Path to the symbol table TOML")
}

// environment is everything a command needs to build an engine.
type environment struct {
	store    *config.Store
	provider symbols.Provider
	catalog  *catalog.Catalog
	resolver *utils.PathResolver
}

func (env *environment) engineOptions() engine.Options {
	cfg := env.store.Get()
	return engine.Options{
		Provider:  env.provider,
		Catalog:   env.catalog,
		Flags:     env.store,
		Interval:  cfg.Debounce(),
		MaxRecent: cfg.Completion.MaxRecent,
	}
}

// loadEnvironment resolves config, symbol table and catalog cache paths.
func loadEnvironment() (*environment, error) {
	cfg, configPath, err := config.LoadConfigWithPriority(configFlag)
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}
	log.Debugf("Using config file: (%s)", configPath)
	store := config.NewStore(cfg, configPath)

	resolver, err := utils.NewPathResolver(AppName)
	if err != nil {
		log.Warnf("Failed to initialize path resolver: %v", err)
	}

	provider, err := loadSymbols(cfg, resolver)
	if err != nil {
		return nil, err
	}

	cachePath := cfg.Catalog.CachePath
	if cachePath == "" && configPath != "" {
		cachePath = filepath.Join(filepath.Dir(configPath), "nodes.toml")
	}
	cat := catalog.New(provider, catalog.Options{
		CachePath:  cachePath,
		PluginDirs: cfg.Catalog.PluginDirs,
	})

	return &environment{store: store, provider: provider, catalog: cat, resolver: resolver}, nil
}

// loadSymbols finds the symbol table from the flag, the config, or the data
// dir next to the binary. A missing table leaves only document and keyword
// completions.
func loadSymbols(cfg *config.Config, resolver *utils.PathResolver) (symbols.Provider, error) {
	userPath := symbolsFlag
	if userPath == "" {
		userPath = cfg.Symbols.TablePath
	}

	if resolver == nil {
		if userPath == "" {
			return symbols.NewStatic(symbols.Table{}), nil
		}
		return symbols.LoadStatic(userPath)
	}

	path, err := resolver.FindDataFile(userPath, symbolsFile)
	if err != nil {
		if userPath != "" {
			return nil, errors.Wrapf(err, "symbol table %s", userPath)
		}
		log.Warn("No symbol table found, running with document completions only...")
		log.Debug("Searched", "paths", resolver.DataFileCandidates("", symbolsFile))
		return symbols.NewStatic(symbols.Table{}), nil
	}
	log.Debugf("Using symbol table at: %s", path)
	return symbols.LoadStatic(path)
}

// printBanner displays the version with the same styling as other charm logs.
func printBanner() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ ScriptServe ] Serves script completions while you type!")
	l.Print("", "version", Version)
	l.Print("Github Repo", "gh", gh)
	l.Print("")
}

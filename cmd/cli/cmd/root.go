package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelospk/subfinder/pkg/core/cache"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/providers"
	"github.com/angelospk/subfinder/pkg/providers/opensubtitles"
	"github.com/angelospk/subfinder/pkg/providers/opensubtitlescom"
	"github.com/angelospk/subfinder/pkg/refiners"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys
const (
	CfgKeyOSUsername     = "opensubtitles.username"
	CfgKeyOSPassword     = "opensubtitles.password"
	CfgKeyOSComAPIKey    = "opensubtitlescom.apikey"
	CfgKeyOSComUsername  = "opensubtitlescom.username"
	CfgKeyOSComPassword  = "opensubtitlescom.password"
	CfgKeyTraktClientID  = "trakt.clientid"
	CfgKeyCachePath      = "cache.path"
	CfgKeyCacheTTL       = "cache.ttl"
	CfgKeyDefaultLangs   = "languages"
	CfgKeyDefaultProvs   = "providers"
	CfgKeyDefaultRefiner = "refiners"
)

const configDirName = ".subfinder"

// sectionKeys are the per-provider and per-refiner settings read from the
// config file or SUBFINDER_<SECTION>_<KEY> variables.
var sectionKeys = map[string][]string{
	opensubtitles.Name:    {"username", "password", "useragent", "timeout", "endpoint"},
	opensubtitlescom.Name: {"apikey", "username", "password", "useragent", "timeout", "baseurl", "allow_machine_translated"},
	"trakt":               {"clientid"},
}

var (
	cfgFile string
	debug   bool

	// NewRegistryFunc builds the provider registry. Tests replace it.
	NewRegistryFunc = providers.DefaultRegistry
	// NewRefinerRegistryFunc builds the refiner registry. Tests replace it.
	NewRefinerRegistryFunc = refiners.Default

	// RootCmd represents the base command when called without any subcommands
	RootCmd = NewRootCmd()
)

// NewRootCmd builds the command tree. Each call returns fresh commands and
// flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "subfinder",
		Short: "Find and download subtitles for your videos.",
		Long: `subfinder scans video files, asks subtitle providers for candidates,
scores them against what it knows about each video and saves the best ones
next to the videos.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.subfinder/config.yaml or ./config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "print debug logs")

	root.AddCommand(newDownloadCmd(), newListCmd(), newCacheCmd(), newProvidersCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, configDirName))
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.SetDefault(CfgKeyCachePath, filepath.Join(home, configDirName, "cache.db"))
	}
	viper.SetDefault(CfgKeyCacheTTL, "24h")

	viper.SetEnvPrefix("SUBFINDER") // e.g. SUBFINDER_OPENSUBTITLESCOM_APIKEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading config file (%s): %v\n", viper.ConfigFileUsed(), err)
		}
	}
}

// newLogger returns the logger shared by one command run. Logs go to stderr
// so tables and summaries stay clean on stdout.
func newLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.InfoLevel)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// sectionConfig collects the settings of one provider or refiner section.
func sectionConfig(name string) provider.Config {
	cfg := provider.Config{}
	for k, v := range viper.GetStringMap(name) {
		cfg[k] = v
	}
	for _, k := range sectionKeys[name] {
		if viper.IsSet(name + "." + k) {
			cfg[k] = viper.Get(name + "." + k)
		}
	}
	return cfg
}

func sectionConfigs(names []string) map[string]provider.Config {
	out := make(map[string]provider.Config, len(names))
	for _, name := range names {
		out[name] = sectionConfig(name)
	}
	return out
}

// openCache opens the on-disk cache, or an in-memory one when cache.path is
// "memory". The returned close func is never nil.
func openCache(logger *logrus.Logger) (cache.Store, func(), error) {
	ttl := viper.GetDuration(CfgKeyCacheTTL)
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	path := viper.GetString(CfgKeyCachePath)
	if path == "" || path == "memory" {
		return cache.NewMemory(1024, ttl), func() {}, nil
	}
	store, err := cache.OpenBolt(path, ttl, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close cache")
		}
	}, nil
}

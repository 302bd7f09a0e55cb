package main

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/rainlang/rainlsp/config"
	"github.com/rainlang/rainlsp/implementation"
	"github.com/rainlang/rainlsp/meta"
)

var log = logging.MustGetLogger("rainlsp")

var (
	verbose      int
	logPath      string
	configPath   string
	noMetaSearch bool
	force        bool
)

var rootCommand = &cobra.Command{
	Use:           "rainlsp",
	Short:         "Language server for Rainlang dotrain documents",
	Version:       implementation.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging(verbose, logPath)
	},
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.CountVarP(&verbose, "verbose", "v", "add a log verbosity level (can be used more than once)")
	flags.StringVarP(&logPath, "log", "l", "", "log to this file instead of stderr")
	flags.StringVarP(&configPath, "config", "c", "", "rainconfig file (JSON or Jsonnet)")
	flags.BoolVar(&noMetaSearch, "no-meta-search", false, "do not search meta sources for unknown hashes")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// loadStore builds the meta store from the rainconfig, if there is one. The
// --no-meta-search flag wins over the file. With force the includes and
// records that cannot be used are skipped.
func loadStore() (*meta.Store, bool, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFilename); err != nil {
			return meta.NewStore(), noMetaSearch, nil
		}
		path = config.DefaultFilename
	}

	config_, err := config.Load(path)
	if err != nil {
		return nil, false, err
	}
	var store *meta.Store
	if force {
		store = config_.ForceStore()
	} else if store, err = config_.Store(); err != nil {
		return nil, false, err
	}
	log.Infof("loaded %s", path)
	return store, noMetaSearch || config_.NoMetaSearch, nil
}

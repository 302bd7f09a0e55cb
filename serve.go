package main

import (
	contextpkg "context"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"github.com/tliron/glsp/server"

	"github.com/rainlang/rainlsp/config"
	"github.com/rainlang/rainlsp/implementation"
	"github.com/rainlang/rainlsp/meta"
)

var watch bool

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Serve the language server protocol over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCommand.PersistentFlags().BoolVarP(&watch, "watch", "w", false, "reload the rainconfig when it changes")
	rootCommand.AddCommand(serveCommand)

	// serving is what editors expect when they start the binary bare
	rootCommand.Args = cobra.NoArgs
	rootCommand.RunE = serveCommand.RunE
}

func serve() error {
	store, noMetaSearch, err := loadStore()
	if err != nil {
		return err
	}
	implementation.Configure(store, noMetaSearch)

	if watch {
		if configPath == "" {
			log.Warning("--watch needs --config, not watching")
		} else {
			context, cancel := contextpkg.WithCancel(contextpkg.Background())
			atexit.Register(cancel)
			go func() {
				err := config.Watch(context, configPath, func(config_ *config.Config, store *meta.Store) {
					implementation.Reload(store, noMetaSearch || config_.NoMetaSearch)
				})
				if err != nil {
					log.Errorf("%s", err.Error())
				}
			}()
		}
	}

	log.Infof("%s %s starting", implementation.ServerName, implementation.Version)
	server_ := server.NewServer(&implementation.Handler, implementation.ServerName, verbose > 2)
	return server_.RunStdio()
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/tminor/lspblade/completion"
	"github.com/tminor/lspblade/implementation"
	"github.com/tminor/lspblade/syntax"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the language server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
}

func runServe(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := flags.load(cmd)
	if err != nil {
		return err
	}
	if err := configureLogging(cfg.Log); err != nil {
		return err
	}

	engine, err := syntax.LoadEngine(cfg.LanguageSpec())
	if err != nil {
		return fmt.Errorf("load grammar: %w", err)
	}

	server := implementation.NewServer(implementation.Options{
		Version: version,
		Engine:  engine,
		Dialect: cfg.Dialect(),
		Oracle:  completion.NewPhpactor(cfg.PhpactorConfig()),
		Offset:  cfg.OffsetPolicy(),
		Exit:    atexit.Exit,

		TraceMessages: strings.EqualFold(cfg.Log.Level, "debug"),
	})
	atexit.Register(server.Reset)

	log.Infof("lspblade %s serving %s (%s dialect)", version, engine.Name(), cfg.Dialect().Name)
	return server.RunStdio()
}

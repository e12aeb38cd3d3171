package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "lspblade",
		Short: "Language server for Laravel Blade templates",
		Long: `lspblade speaks the Language Server Protocol on stdin and stdout.

Completion inside embedded PHP is delegated to phpactor; everything else
(markup, directives) answers from the syntax tree alone.

Without a subcommand the server is started.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, &flags)
		},
	}
	flags.register(rootCmd)

	rootCmd.AddCommand(newServeCmd(&flags))
	rootCmd.AddCommand(newInspectCmd(&flags))
	rootCmd.AddCommand(newCompleteCmd(&flags))
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

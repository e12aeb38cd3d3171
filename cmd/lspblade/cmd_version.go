package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tminor/lspblade/syntax"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and the builtin grammars",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lspblade %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "builtin grammars: %v\n", syntax.BuiltinLanguages())
		},
	}
}

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set in build using -ldflags "-X github.com/nest-os/nest/cmd/nest.<name>=<value>".
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "nest\n")
		fmt.Fprintf(out, "  Version:     %s\n", Version)
		fmt.Fprintf(out, "  Built:       %s\n", BuildDate)
		fmt.Fprintf(out, "  Go version:  %s\n", runtime.Version())
	},
}

func init() {
	Nest.AddCommand(versionCommand)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var graphCommand = &cobra.Command{
	Use:   "graph <script> <function>",
	Short: "Print the dependencies of a function as a DOT graph",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := settings(cmd)
		logger := newLogger(v.GetBool("verbose"))
		defer func() {
			_ = logger.Sync()
		}()

		res, err := resolveFile(args[0], args[1], logger)
		if err != nil {
			return err
		}
		dot, err := res.Graph.DOT(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(dot))
		return nil
	},
}

func init() {
	Nest.AddCommand(graphCommand)
}

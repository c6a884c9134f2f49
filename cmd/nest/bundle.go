package cmd

import (
	"github.com/nest-os/nest/bundle"
	"github.com/nest-os/nest/resolver"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var bundleCommand = &cobra.Command{
	Use:   "bundle <script> <function>",
	Short: "Print the bundle of a function",
	Long: `Print the bundle of a function.

The bundle contains the function, every top-level function it calls and the
imports they use, followed by a call to the function.`,
	Args: cobra.ExactArgs(2),
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
		_, err = cmd.OutOrStdout().Write(bundle.Render(res))
		return err
	},
}

func init() {
	Nest.AddCommand(bundleCommand)
}

func resolveFile(filename, function string, logger *zap.Logger) (*resolver.Result, error) {
	src, err := afero.ReadFile(afero.NewOsFs(), filename)
	if err != nil {
		return nil, err
	}
	s, err := resolver.Load(filename, src)
	if err != nil {
		return nil, err
	}
	r := &resolver.Resolver{
		Logger: logger,
		OnSkip: func(s resolver.Skip) {
			logger.Debug("Not bundled", zap.String("from", s.From), zap.String("name", s.Name))
		},
	}
	return r.Resolve(s, function)
}

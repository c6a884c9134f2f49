package cmd

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Nest is the root command.
var Nest = &cobra.Command{
	Use:           "nest",
	Short:         "Compile a system configuration into artifacts",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	Nest.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages")
}

// settings binds the flags of cmd to a viper instance. Flags beat NEST_*
// environment variables, which beat flag defaults.
func settings(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("NEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	if cmd.Flags().Lookup("out") != nil {
		if err := v.BindEnv("out", "NEST_GEN_ROOT", "NEST_OUT"); err != nil {
			panic(err)
		}
	}
	return v
}

// newLogger returns a development logger when stderr is a terminal, and a
// production logger otherwise.
func newLogger(verbose bool) *zap.Logger {
	var cfg zap.Config
	if isatty.IsTerminal(os.Stderr.Fd()) {
		cfg = zap.NewDevelopmentConfig()
		if !verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
	} else {
		cfg = zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

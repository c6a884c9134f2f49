package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/nest-os/nest/bundle"
	"github.com/nest-os/nest/compiler"
	"github.com/nest-os/nest/config"
	"github.com/nest-os/nest/emit"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var buildCommand = &cobra.Command{
	Use:   "build [script]",
	Short: "Evaluate a configuration and emit its artifacts",
	Long: `Evaluate a configuration and emit its artifacts.

The configuration is read from the given file, or from nest.lua or nest.hcl
in the current directory or one of its parents.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := settings(cmd)
		logger := newLogger(v.GetBool("verbose"))
		defer func() {
			_ = logger.Sync()
		}()

		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		file, err := config.FindScript(target)
		if err != nil {
			return err
		}
		if file == "" {
			return errors.Errorf("no %s found in %s or its parents", config.ScriptNames, target)
		}

		format, err := emit.ParseFormat(v.GetString("format"))
		if err != nil {
			return err
		}

		identity, err := config.ReadIdentity(v.GetString("os-release"))
		if err != nil {
			return err
		}
		catalog, err := readCatalog(v.GetString("locale-gen"), logger)
		if err != nil {
			return err
		}

		out := v.GetString("out")
		ctx := signalContext(context.Background())

		loader := &compiler.Loader{
			Identity: identity,
			GenRoot:  out,
			Logger:   logger,
		}
		in, err := loader.Load(ctx, file)
		if err != nil {
			if loader.PrintDiagnostics(cmd.ErrOrStderr(), err) {
				return errors.New("configuration has errors")
			}
			return err
		}

		ledger, closeLedger, err := openLedger(v.GetString("state"), logger)
		if err != nil {
			return err
		}
		defer closeLedger()

		c := &compiler.Compiler{
			Logger:  logger,
			OutDir:  out,
			Catalog: catalog,
			Format:  format,
			Ledger:  ledger,
		}
		if v.GetBool("stdout") {
			c.Stream = cmd.OutOrStdout()
			c.Color = format == emit.JSON && isatty.IsTerminal(os.Stdout.Fd())
		}

		rep, err := c.Compile(ctx, in)
		if err != nil {
			if errors.Cause(err) == compiler.ErrMissingOutputLocation {
				return errors.New("no output directory: set --out or NEST_GEN_ROOT, or use --stdout")
			}
			return err
		}
		printReport(cmd.ErrOrStderr(), rep)
		return rep.Err()
	},
}

func init() {
	flags := buildCommand.Flags()
	flags.StringP("out", "o", "", "Output directory. Env var: NEST_GEN_ROOT")
	flags.String("os-release", "/etc/os-release", "File identifying the running system")
	flags.String("locale-gen", "/etc/locale.gen", "Locale catalog")
	flags.Bool("stdout", false, "Write a document mirroring all artifacts to stdout")
	flags.String("format", string(emit.JSON), "Document format: json or yaml")
	flags.String("state", "", `Ledger file, "none" to disable (default ~/.nest/state.db)`)

	Nest.AddCommand(buildCommand)
}

func readCatalog(filename string, logger *zap.Logger) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Locale catalog not found, locale.gen will be empty", zap.String("file", filename))
			return nil, nil
		}
		return nil, errors.Wrap(err, "open locale catalog")
	}
	defer func() {
		_ = f.Close()
	}()
	return emit.ReadCatalog(f)
}

func printReport(w io.Writer, rep *compiler.Report) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	for _, o := range rep.Outcomes {
		switch {
		case o.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", red("✗"), o.Artifact, o.Err)
		case o.Path == "":
			fmt.Fprintf(w, "%s %s %s\n", green("✓"), o.Artifact, faint("(stream only)"))
		case o.Unchanged:
			fmt.Fprintf(w, "%s %s %s\n", green("✓"), o.Path, faint("(unchanged)"))
		default:
			fmt.Fprintf(w, "%s %s\n", green("✓"), o.Path)
		}
	}
	for _, role := range bundle.Roles() {
		for _, s := range rep.Skipped[string(role)] {
			fmt.Fprintf(w, "%s\n", faint(fmt.Sprintf("  %s: %s calls %s, not bundled", role, s.From, s.Name)))
		}
	}
	fmt.Fprintln(w, faint("Run "+rep.RunID))
}

package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/nest-os/nest/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyCommand = &cobra.Command{
	Use:   "history [hostname]",
	Short: "List the artifacts and runs recorded for a host",
	Long: `List the artifacts and runs recorded for a host.

The hostname defaults to the one derived from the os-release file. With
--forget, the artifact records of the host are deleted instead, so the next
build reports every artifact as changed. Runs are kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := settings(cmd)
		logger := newLogger(v.GetBool("verbose"))
		defer func() {
			_ = logger.Sync()
		}()

		var hostname string
		if len(args) == 1 {
			hostname = config.NormalizeHostname(args[0])
		} else {
			id, err := config.ReadIdentity(v.GetString("os-release"))
			if err != nil {
				return err
			}
			hostname = config.NewFromIdentity(id).Hostname
		}

		if v.GetString("state") == stateNone {
			return errors.New("ledger is disabled")
		}
		ledger, closeLedger, err := openLedger(v.GetString("state"), logger)
		if err != nil {
			return err
		}
		defer closeLedger()

		ctx := context.Background()
		out := cmd.OutOrStdout()
		cyan := color.New(color.FgCyan).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()

		if v.GetBool("forget") {
			if err := ledger.Forget(ctx, hostname); err != nil {
				return err
			}
			logger.Info("Forgot artifacts", zap.String("hostname", hostname))
			fmt.Fprintf(out, "Forgot the artifacts recorded for %s\n", cyan(hostname))
			return nil
		}

		artifacts, err := ledger.Artifacts(ctx, hostname)
		if err != nil {
			return err
		}
		runs, err := ledger.Runs(ctx, hostname)
		if err != nil {
			return err
		}

		if len(artifacts) == 0 && len(runs) == 0 {
			fmt.Fprintf(out, "Nothing recorded for %s\n", cyan(hostname))
			return nil
		}

		fmt.Fprintf(out, "Host: %s\n\n", cyan(hostname))
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ARTIFACT\tSHA256\tSIZE\tWRITTEN\tPATH")
		for _, a := range artifacts {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", a.Name, short(a.Digest), a.Size, a.Time.Local().Format(time.RFC3339), a.Path)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tTIME\tARTIFACTS\tERRORS")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.ID, r.Time.Local().Format(time.RFC3339), len(r.Artifacts), len(r.Errors))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, r := range runs {
			for _, e := range r.Errors {
				fmt.Fprintf(out, "%s %s\n", faint(r.ID), e)
			}
		}
		return nil
	},
}

func init() {
	historyCommand.Flags().String("os-release", "/etc/os-release", "File identifying the running system")
	historyCommand.Flags().String("state", "", "Ledger file (default ~/.nest/state.db)")
	historyCommand.Flags().Bool("forget", false, "Delete the artifact records of the host")

	Nest.AddCommand(historyCommand)
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

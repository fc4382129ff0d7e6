package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"audit-backend/internal/auditclient"
	"audit-backend/internal/audits"
	"audit-backend/internal/bootstrap"
	"audit-backend/internal/progress"
	"audit-backend/internal/report"
)

var (
	runFormat string
	runOut    string
	runServer string
	runQuiet  bool
)

var runCmd = &cobra.Command{
	Use:   "run <website-url>",
	Short: "Run one audit and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := report.ParseFormat(runFormat)
		if err != nil {
			return err
		}
		in, err := audits.NewUserInput(args[0])
		if err != nil {
			return err
		}
		analyzer, err := newAnalyzer(cmd, runServer)
		if err != nil {
			return err
		}

		stderr := cmd.ErrOrStderr()
		stopTicker := func() {}
		if !runQuiet {
			tickCtx, cancel := context.WithCancel(ctx)
			wait := progress.Run(tickCtx, progress.Interval, func(step int) {
				fmt.Fprintf(stderr, "[%d/%d] %s\n", step+1, len(progress.Steps), progress.Label(step))
			})
			stopTicker = func() {
				cancel()
				wait()
			}
		}

		result, err := analyzer.Analyze(ctx, in)
		stopTicker()
		if err != nil {
			printFailure(stderr, err)
			return eris.New("audit failed")
		}

		if runOut == "" {
			return report.Encode(cmd.OutOrStdout(), format, in.WebsiteURL, result)
		}
		path := runOut
		if strings.HasSuffix(path, string(os.PathSeparator)) {
			path += report.FileName(in.WebsiteURL, format.Ext())
		}
		if err := writeReport(path, format, in.WebsiteURL, result); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "wrote %s\n", path)
		return nil
	},
}

func writeReport(path string, format report.Format, websiteURL string, result audits.AnalysisResult) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create output file")
	}
	if err := report.Encode(f, format, websiteURL, result); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "close output file")
	}
	return nil
}

func init() {
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "markdown", "output format: json, yaml or markdown")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the report to this file (a trailing / picks the default file name)")
	runCmd.Flags().StringVar(&runServer, "server", "", "audit API base URL; empty runs in-process")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "hide progress steps")
}

func newAnalyzer(cmd *cobra.Command, serverURL string) (audits.Analyzer, error) {
	if serverURL != "" {
		return auditclient.New(serverURL), nil
	}
	svc, err := bootstrap.NewAnalyzer(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// printFailure writes the classified message with the raw provider text beneath it.
func printFailure(w io.Writer, err error) {
	class := audits.Classify(err)
	fmt.Fprintf(w, "error [%s]: %s\n", class, audits.UserMessage(class))
	if class == audits.ClassQuota {
		fmt.Fprintln(w, "Please wait about 30 seconds and try again...")
	}
	fmt.Fprintf(w, "  %s\n", err.Error())
}

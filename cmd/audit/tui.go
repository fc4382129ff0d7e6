package main

import (
	"github.com/spf13/cobra"

	"audit-backend/internal/auditclient"
	"audit-backend/internal/leads"
	"audit-backend/internal/tui"
)

var (
	tuiServer  string
	tuiSaveDir string
	tuiStyle   string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run audits interactively in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := tui.Options{SaveDir: tuiSaveDir, Style: tuiStyle}
		if tuiServer != "" {
			client := auditclient.New(tuiServer)
			opts.Analyzer = client
			opts.Leads = client
		} else {
			analyzer, err := newAnalyzer(cmd, "")
			if err != nil {
				return err
			}
			opts.Analyzer = analyzer
			opts.Leads = leads.NewService()
		}
		return tui.Run(cmd.Context(), opts)
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiServer, "server", "", "audit API base URL; empty runs in-process")
	tuiCmd.Flags().StringVar(&tuiSaveDir, "save-dir", "", "directory for saved reports")
	tuiCmd.Flags().StringVar(&tuiStyle, "style", "dark", "report style: dark, light, notty or ascii")
}

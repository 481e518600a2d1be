package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sandevgo/scoutbot/internal/service/analyst"
	"github.com/sandevgo/scoutbot/internal/service/ui"
	"github.com/sandevgo/scoutbot/pkg/log"
	"github.com/sandevgo/scoutbot/pkg/srv"
	"github.com/spf13/cobra"
)

var askMode bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <prompt>",
	Short: "Run a single analysis and exit",
	Long:  `Starts the connectors, steers the news stream towards the prompt and prints the report.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		services := app.Services()
		srv.StartServices(ctx, services)
		defer func() {
			stop()
			srv.ShutdownServices(ctx, services)
		}()

		prompt := strings.Join(args, " ")
		log.FromCtx(ctx).Info().Str("prompt", prompt).Msg("running one-shot analysis")

		var report analyst.Report
		if askMode {
			report = app.Analyst.Ask(ctx, prompt)
		} else {
			report = app.Analyst.Analyze(ctx, prompt)
		}

		fmt.Fprintln(cmd.OutOrStdout(), statusLine(report))
		fmt.Fprintln(cmd.OutOrStdout(), report.Markdown())

		if report.Status == analyst.StatusFailed {
			return fmt.Errorf("analysis failed: %s", report.Error)
		}
		return nil
	},
}

func statusLine(r analyst.Report) string {
	label := strings.ToUpper(string(r.Status))
	switch r.Status {
	case analyst.StatusOK:
		return ui.OKStyle.Render(label)
	case analyst.StatusDataGap:
		return ui.GapStyle.Render(label)
	default:
		return ui.ErrorStyle.Render(label)
	}
}

func init() {
	analyzeCmd.Flags().BoolVar(&askMode, "ask", false, "answer from memory and news instead of steering the stream")
	rootCmd.AddCommand(analyzeCmd)
}

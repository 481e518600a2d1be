package main

import (
	"fmt"
	"strings"

	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/pkg/env"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the effective configuration",
	Long:  `Prints the resolved configuration in .env form. Secrets are masked and invalid values are reported as comments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, section := range config.Sections() {
			fmt.Fprintf(out, "# %s\n", section.Name)
			if section.Err != nil {
				fmt.Fprintln(out, commentLines(section.Err.Error()))
			}
			content, err := env.MarshalEnv(section.Value)
			if err != nil {
				return err
			}
			fmt.Fprint(out, maskSecrets(content))
		}
		return nil
	},
}

// commentLines prefixes every line with "# error: " so the output stays a
// valid .env file.
func commentLines(msg string) string {
	lines := strings.Split(strings.TrimSpace(msg), "\n")
	for i, line := range lines {
		lines[i] = "# error: " + line
	}
	return strings.Join(lines, "\n")
}

func maskSecrets(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		key, _, ok := strings.Cut(line, "=")
		if ok && (strings.HasSuffix(key, "_KEY") || strings.HasSuffix(key, "_TOKEN")) {
			lines[i] = key + "=****"
		}
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(envCmd)
}

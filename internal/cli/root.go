package cli

import (
    "context"
    "fmt"

    "github.com/spf13/cobra"
)

// Execute runs the saferpay2openapi CLI until ctx is canceled.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:           "saferpay2openapi",
        Short:         "Convert the Saferpay JSON API documentation into an OpenAPI 3.0 document",
        Long:          "saferpay2openapi scrapes the Saferpay JSON API HTML documentation and compiles its type dictionary, requests and error handling into an OpenAPI 3.0 document.",
        SilenceErrors: true,
        SilenceUsage:  true,
        RunE: func(cmd *cobra.Command, args []string) error {
            return cmd.Help()
        },
    }

    cmd.SetFlagErrorFunc(flagErrorFunc)

    cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML)")
    cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output (same as --log-level debug)")
    cmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
    cmd.PersistentFlags().String("log-file", "", "Also write JSON log records to this file")
    cmd.PersistentFlags().String("env-file", ".env", "dotenv file with SAFERPAY2OPENAPI_* overrides (ignored when missing)")

    for _, sub := range []*cobra.Command{newGenerateCmd(), newInitCmd()} {
        sub.SetFlagErrorFunc(flagErrorFunc)
        cmd.AddCommand(sub)
    }

    return cmd
}

// flagErrorFunc converts Cobra flag errors (like unknown flags) into friendly
// usage errors that also show the command's help text.
func flagErrorFunc(c *cobra.Command, err error) error {
    return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}

package cli

import (
    "context"
    "errors"
    "fmt"
    "os"
    "strings"

    "github.com/spf13/cobra"

    "github.com/mark3labs/saferpay2openapi/internal/emitter"
)

const defaultConfigPath = "saferpay2openapi.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:   "init",
        Short: "Scaffold a sample saferpay2openapi configuration file",
        Long:  "Scaffold a commented saferpay2openapi configuration file that documents available options.",
        RunE: func(cmd *cobra.Command, args []string) error {
            out, err := cmd.Flags().GetString("out")
            if err != nil {
                return err
            }
            force, err := cmd.Flags().GetBool("force")
            if err != nil {
                return err
            }
            verbose, err := cmd.Flags().GetBool("verbose")
            if err != nil {
                return err
            }
            cfg := &InitConfig{
                OutputPath: out,
                Force:      force,
                Verbose:    verbose,
            }
            return initRunner(cmd.Context(), cfg)
        },
    }

    cmd.Flags().String("out", defaultConfigPath, "Where to write the sample config file")
    cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

    return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
    out := strings.TrimSpace(cfg.OutputPath)
    if out == "" || out == emitter.StdoutPath {
        out = defaultConfigPath
    }

    content := strings.TrimSpace(sampleConfigYAML) + "\n"
    res, err := emitter.Emit(ctx, []byte(content), emitter.Options{Out: out, Force: cfg.Force})
    if err != nil {
        if errors.Is(err, emitter.ErrExists) {
            return newUsageError(fmt.Sprintf("init: %v", err))
        }
        return newUsageError(fmt.Sprintf("init: %v\nHint: choose a different --out or check directory permissions.", err))
    }
    fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", res.Path)
    return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# saferpay2openapi configuration (YAML)
# All fields are optional. Precedence: defaults < this file < SAFERPAY2OPENAPI_*
# environment (including .env) < command-line flags.

# Path or URL to the documentation page (http/https or local file).
# input: https://raw.githubusercontent.com/saferpay/jsonapi/gh-pages/index.html

# Output file; "-" writes to stdout.
# out: ./openapi.yaml

# Output format (yaml|json). Inferred from the out extension when omitted.
# format: yaml

# Override the info block.
# title: Saferpay JSON API
# apiVersion: "1.10.0"

# Servers block; replaces the Saferpay production and test servers.
# servers: ["https://test.saferpay.com/api/Payment/v1"]

# Carry field descriptions, examples and possible values into schemas.
# fieldDocs: false

# Validate the generated document with kin-openapi before writing.
# validate: false

# HTTP fetch tuning.
# timeout: 30s
# retries: 3

# Logging.
# logLevel: info
# logFile: ./saferpay2openapi.log

# Preview the planned output without writing.
# dryRun: false

# Overwrite an existing output file.
# force: false

# Enable verbose logging.
# verbose: false
`

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/saferpay2openapi/internal/docs"
	"github.com/mark3labs/saferpay2openapi/internal/emitter"
	"github.com/mark3labs/saferpay2openapi/internal/logging"
	"github.com/mark3labs/saferpay2openapi/internal/spec"
)

// envPrefix namespaces environment overrides, e.g. SAFERPAY2OPENAPI_OUT.
const envPrefix = "SAFERPAY2OPENAPI_"

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, environment and CLI overrides.
type GenerateConfig struct {
	Input      string
	Out        string
	Format     string
	Title      string
	APIVersion string
	Servers    []string
	FieldDocs  bool
	Validate   bool
	Timeout    time.Duration
	Retries    int
	ConfigPath string
	EnvFile    string
	LogLevel   string
	LogFile    string
	DryRun     bool
	Force      bool
	Verbose    bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Input:    docs.DefaultURL,
		Out:      emitter.StdoutPath,
		Timeout:  docs.DefaultSettings().HTTPTimeout,
		Retries:  docs.DefaultSettings().MaxRetries,
		EnvFile:  ".env",
		LogLevel: "info",
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an OpenAPI 3.0 document from the Saferpay JSON API documentation",
		Long: "Generate an OpenAPI 3.0 document from the Saferpay JSON API HTML documentation. " +
			"Options can be provided via flags, environment, config files, or defaults.",
		Example: strings.TrimSpace(`  saferpay2openapi generate --out openapi.yaml
  saferpay2openapi generate --input ./index.html --format json --validate
  saferpay2openapi --config saferpay2openapi.yaml generate --force`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the documentation page (defaults to the published Saferpay page)")
	flags.String("out", "", "Output file; \"-\" writes to stdout (default)")
	flags.String("format", "", "Output format (yaml|json); inferred from --out extension when omitted")
	flags.String("title", "", "Override info.title")
	flags.String("api-version", "", "Override info.version")
	flags.StringSlice("server", nil, "Server URL for the servers block (repeatable); replaces the Saferpay production and test servers")
	flags.Bool("field-docs", false, "Carry field descriptions, examples and enums into schemas")
	flags.Bool("validate", false, "Validate the generated document with kin-openapi before writing")
	flags.Duration("timeout", 0, "Per-request HTTP timeout")
	flags.Int("retries", 0, "Attempts for transient HTTP failures")
	flags.Bool("dry-run", false, "Preview the planned output without writing")
	flags.Bool("force", false, "Overwrite an existing output file")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("env-file") {
		value, err := cmd.Flags().GetString("env-file")
		if err != nil {
			return nil, err
		}
		cfg.EnvFile = strings.TrimSpace(value)
	}
	if err := applyGenerateEnv(&cfg, cfg.EnvFile, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := map[string]*string{
		"input":       &cfg.Input,
		"out":         &cfg.Out,
		"format":      &cfg.Format,
		"title":       &cfg.Title,
		"api-version": &cfg.APIVersion,
		"log-level":   &cfg.LogLevel,
		"log-file":    &cfg.LogFile,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	bools := map[string]*bool{
		"field-docs": &cfg.FieldDocs,
		"validate":   &cfg.Validate,
		"dry-run":    &cfg.DryRun,
		"force":      &cfg.Force,
		"verbose":    &cfg.Verbose,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("server") {
		value, err := flags.GetStringSlice("server")
		if err != nil {
			return err
		}
		cfg.Servers = value
	}
	if flags.Changed("timeout") {
		value, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = value
	}
	if flags.Changed("retries") {
		value, err := flags.GetInt("retries")
		if err != nil {
			return err
		}
		cfg.Retries = value
	}

	return nil
}

// applyGenerateEnv overlays SAFERPAY2OPENAPI_* variables. Values from the
// process environment win over the same keys in envFile; a missing envFile is
// not an error.
func applyGenerateEnv(cfg *GenerateConfig, envFile string, lookup func(string) (string, bool)) error {
	vars := map[string]string{}
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for k, v := range fileVars {
				vars[k] = v
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return newUsageError(fmt.Sprintf("read env file %q: %v", envFile, err))
		}
	}
	for _, key := range generateKeys {
		name := envPrefix + key.env
		if v, ok := lookup(name); ok {
			vars[name] = v
		}
	}

	for _, key := range generateKeys {
		name := envPrefix + key.env
		value, ok := vars[name]
		if !ok {
			continue
		}
		if _, err := setGenerateField(cfg, key.normalized, value); err != nil {
			return newUsageError(fmt.Sprintf("environment %s: %v", name, err))
		}
	}
	return nil
}

type generateKey struct {
	normalized string
	env        string
}

// generateKeys lists the settable fields in their normalized and environment
// spellings.
var generateKeys = []generateKey{
	{"input", "INPUT"},
	{"out", "OUT"},
	{"format", "FORMAT"},
	{"title", "TITLE"},
	{"apiversion", "API_VERSION"},
	{"servers", "SERVERS"},
	{"fielddocs", "FIELD_DOCS"},
	{"validate", "VALIDATE"},
	{"timeout", "TIMEOUT"},
	{"retries", "RETRIES"},
	{"loglevel", "LOG_LEVEL"},
	{"logfile", "LOG_FILE"},
	{"dryrun", "DRY_RUN"},
	{"force", "FORCE"},
	{"verbose", "VERBOSE"},
}

// setGenerateField assigns one normalized key. It reports false for keys it
// does not know.
func setGenerateField(cfg *GenerateConfig, key string, value any) (bool, error) {
	var err error
	switch key {
	case "input":
		cfg.Input, err = valueAsString(value)
	case "out":
		cfg.Out, err = valueAsString(value)
	case "format":
		cfg.Format, err = valueAsString(value)
	case "title":
		cfg.Title, err = valueAsString(value)
	case "apiversion":
		cfg.APIVersion, err = valueAsString(value)
	case "servers":
		cfg.Servers, err = valueAsStringList(value)
	case "fielddocs":
		cfg.FieldDocs, err = valueAsBool(value)
	case "validate":
		cfg.Validate, err = valueAsBool(value)
	case "timeout":
		cfg.Timeout, err = valueAsDuration(value)
	case "retries":
		cfg.Retries, err = valueAsInt(value)
	case "loglevel":
		cfg.LogLevel, err = valueAsString(value)
	case "logfile":
		cfg.LogFile, err = valueAsString(value)
	case "dryrun":
		cfg.DryRun, err = valueAsBool(value)
	case "force":
		cfg.Force, err = valueAsBool(value)
	case "verbose":
		cfg.Verbose, err = valueAsBool(value)
	default:
		return false, nil
	}
	return true, err
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Title = strings.TrimSpace(c.Title)
	c.APIVersion = strings.TrimSpace(c.APIVersion)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFile = strings.TrimSpace(c.LogFile)
	var servers []string
	for _, s := range c.Servers {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	c.Servers = servers
	if c.Out == "" {
		c.Out = emitter.StdoutPath
	}
	if c.Format == "" {
		c.Format = string(inferFormat(c.Out))
	}
	if c.Verbose && c.LogLevel == "info" {
		c.LogLevel = "debug"
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input must not be empty")
	}
	if _, err := spec.ParseFormat(c.Format); err != nil {
		return newUsageError(fmt.Sprintf("generate: unsupported --format %q (allowed: yaml, json)", c.Format))
	}
	for _, s := range c.Servers {
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return newUsageError(fmt.Sprintf("generate: --server %q must be an absolute http(s) URL", s))
		}
	}
	if c.Timeout <= 0 {
		return newUsageError(fmt.Sprintf("generate: --timeout must be positive, got %s", c.Timeout))
	}
	if c.Retries < 1 {
		return newUsageError(fmt.Sprintf("generate: --retries must be at least 1, got %d", c.Retries))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	return nil
}

func inferFormat(out string) spec.Format {
	if strings.EqualFold(filepath.Ext(out), ".json") {
		return spec.FormatJSON
	}
	return spec.FormatYAML
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger, closeLog, err := logging.New(logging.Config{Level: level, File: cfg.LogFile})
	if err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	defer func() { _ = closeLog() }()

	// 1) Fetch and parse the documentation page
	logger.Info("fetching documentation", "input", cfg.Input)
	raw, err := docs.Fetch(ctx, cfg.Input,
		docs.WithHTTPTimeout(cfg.Timeout),
		docs.WithMaxRetries(cfg.Retries),
	)
	if err != nil {
		return describeError(err)
	}
	root, err := docs.Parse(raw)
	if err != nil {
		return describeError(&spec.Error{Code: spec.ExtractionError, Message: err.Error(), Row: -1, Location: cfg.Input, Cause: err})
	}

	// 2) Extract types, requests and error handling
	src, err := docs.Gather(root, docs.DefaultLayout())
	if err != nil {
		return describeError(err)
	}
	logger.Info("extracted documentation",
		"types", len(src.Types),
		"requests", len(src.Requests),
		"status_codes", len(src.ErrorHandling.Codes),
	)
	logSource(ctx, logger, src)

	// 3) Compile and serialize
	servers := make([]spec.Server, 0, len(cfg.Servers))
	for _, u := range cfg.Servers {
		servers = append(servers, spec.Server{URL: u})
	}
	doc, err := spec.Compile(src,
		spec.WithInfo(cfg.Title, cfg.APIVersion),
		spec.WithServers(servers...),
		spec.WithFieldDocs(cfg.FieldDocs),
	)
	if err != nil {
		return describeError(err)
	}
	logger.Info("compiled document",
		"schemas", doc.Components.Schemas.Len(),
		"paths", doc.Paths.Len(),
	)
	format, _ := spec.ParseFormat(cfg.Format)
	data, err := spec.Marshal(doc, format)
	if err != nil {
		return describeError(err)
	}

	// 4) Optional structural validation
	if cfg.Validate {
		if err := spec.Validate(ctx, data); err != nil {
			return describeError(err)
		}
		logger.Info("document validated")
	}

	// 5) Emit
	res, err := emitter.Emit(ctx, data, emitter.Options{
		Out:    cfg.Out,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, cfg.Out)
	}
	if cfg.DryRun {
		fmt.Fprintf(os.Stdout, "Planned write to %s (%s, %d bytes)\n", res.Path, format, res.Size)
		return nil
	}
	logger.Info("wrote document", "path", res.Path, "bytes", res.Size, "format", string(format))
	return nil
}

func logSource(ctx context.Context, logger *slog.Logger, src *spec.Source) {
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	for _, td := range src.Types {
		logger.Debug("type", "id", td.ID, "name", td.ShortName, "fields", len(td.Fields))
	}
	for _, rd := range src.Requests {
		logger.Debug("request", "id", rd.ID, "method", rd.Method, "uri", rd.URI,
			"request_fields", len(rd.RequestFields), "response_fields", len(rd.ResponseFields))
	}
}

// describeError maps structured generation errors into friendly messages.
func describeError(err error) error {
	var se *spec.Error
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("%s: %s", se.Code, se.Message)
	if se.Table != "" {
		msg = fmt.Sprintf("%s\nTable: %s", msg, se.Table)
		if se.Row >= 0 {
			msg = fmt.Sprintf("%s\nRow: %d", msg, se.Row)
		}
	}
	if se.Name != "" {
		msg = fmt.Sprintf("%s\nName: %s", msg, se.Name)
	}
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return generationError{usageError: usageError{msg: msg}, cause: se}
}

// generationError is a usage error that still unwraps to the *spec.Error.
type generationError struct {
	usageError
	cause *spec.Error
}

func (e generationError) Unwrap() error { return e.cause }

func wrapOutputError(err error, out string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if errors.Is(err, emitter.ErrExists) || strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") ||
		strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", out, msg))
	}
	return err
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		known, err := setGenerateField(cfg, normalizeKey(key), value)
		if !known {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T (quote version numbers)", v)
	}
}

// valueAsStringList accepts a YAML sequence or a comma-separated string.
func valueAsStringList(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected list of strings, got %T element", item)
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid integer value %q", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// valueAsDuration accepts Go duration strings ("30s") or whole seconds.
func valueAsDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case int:
		return time.Duration(val) * time.Second, nil
	case string:
		trimmed := strings.TrimSpace(val)
		if n, err := strconv.Atoi(trimmed); err == nil {
			return time.Duration(n) * time.Second, nil
		}
		d, err := time.ParseDuration(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid duration value %q", val)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}

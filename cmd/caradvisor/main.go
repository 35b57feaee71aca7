package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/hyperifyio/caradvisor/internal/app"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 2
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
	})

	cfg, showVersion, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(exitOK)
		}
		os.Exit(exitConfigError)
	}
	if showVersion {
		fmt.Println(app.VersionString())
		os.Exit(exitOK)
	}

	// Interrupts keep their default behaviour: a blocking stdin read cannot
	// observe a cancelled context, so Ctrl-C must still end the process.
	os.Exit(run(context.Background(), cfg, os.Stdin, os.Stdout))
}

// parseFlags reads the ambient flags. The conversation itself takes no
// arguments; everything here only feeds configuration.
func parseFlags(args []string, errOut io.Writer) (app.Config, bool, error) {
	var (
		cfg         app.Config
		showVersion bool
	)
	fs := pflag.NewFlagSet("caradvisor", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVarP(&cfg.ConfigPath, "config", "c", "", "Path to a YAML or JSON config file")
	fs.StringSliceVar(&cfg.EnvFiles, "env-file", []string{".env"}, "Dotenv files to load before reading the environment")
	fs.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL (env LLM_BASE_URL)")
	fs.StringVar(&cfg.LLMModel, "llm.model", "", "Model identifier (env LLM_MODEL, default "+app.DefaultModel+")")
	fs.DurationVar(&cfg.LLMTimeout, "llm.timeout", 0, "Per-call timeout, 0 waits indefinitely (env LLM_TIMEOUT)")
	fs.StringVar(&cfg.LLMProxy, "llm.proxy", "", "Proxy URL for completion calls (env LLM_PROXY)")
	fs.StringVar(&cfg.SystemPromptFile, "prompt.file", "", "File replacing the car agent system instruction (env SYSTEM_PROMPT_FILE)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose logging")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return cfg, false, err
	}
	return cfg, showVersion, nil
}

func run(ctx context.Context, cfg app.Config, in io.Reader, out io.Writer) int {
	cfg, err := app.Resolve(cfg)
	if err == nil {
		if cfg.Verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
		err = runApp(ctx, cfg, in, out)
	}
	if err != nil {
		log.Error().Err(err).Msg("car advisor failed")
	}
	return exitCode(err)
}

func runApp(ctx context.Context, cfg app.Config, in io.Reader, out io.Writer) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx, in, out)
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	var ce *app.ConfigurationError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ce):
		return exitConfigError
	default:
		return exitFailure
	}
}

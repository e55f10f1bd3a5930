// Command agrivaani translates text, synthesizes speech and translates
// spoken questions through a Bhashini gateway.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/agrivaani"
	"github.com/ZaguanLabs/agrivaani/cache"
	"github.com/ZaguanLabs/agrivaani/provider"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment variables consulted when the matching flag is empty.
const (
	envBaseURL   = "AGRIVAANI_BASE_URL"
	envAPIKey    = "OPENAI_API_KEY"
	envRedisURL  = "AGRIVAANI_REDIS_URL"
	envStateFile = "AGRIVAANI_STATE_FILE"
)

func main() {
	// A missing .env file is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return fmt.Errorf("a command is required")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "translate":
		return runTranslate(rest, stdout, stderr)
	case "tts":
		return runSpeech(rest, stdout, stderr)
	case "asr":
		return runTranscribe(rest, stdout, stderr)
	case "html":
		return runHTML(rest, stdout, stderr)
	case "languages":
		return runLanguages(rest, stdout, stderr)
	case "theme":
		return runTheme(rest, stdout, stderr)
	case "cache":
		return runCache(rest, stdout, stderr)
	case "serve":
		return runServe(rest, stdout, stderr)
	case "version", "--version", "-version":
		return printVersion(rest, stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	}

	usage(stderr)
	return fmt.Errorf("unknown command %q", cmd)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `%s - %s

Usage:
  agrivaani <command> [flags] [args]

Commands:
  translate  Translate text (args or stdin)
  tts        Synthesize speech and write an audio file
  asr        Transcribe an audio file and translate the transcript
  html       Translate an HTML document
  languages  List supported languages
  theme      Show or set the theme: theme [light|dark|toggle]
  cache      Export or import stored entries: cache export|import <file>
  serve      Run the HTTP API
  version    Show version (--json for build details)

Run "agrivaani <command> -h" for command flags.
`, agrivaani.Name, agrivaani.Description)
}

func printVersion(args []string, w io.Writer) error {
	info := agrivaani.Build()
	if len(args) > 0 && args[0] == "--json" {
		return writeJSON(w, info)
	}

	fmt.Fprintf(w, "%s %s\n", agrivaani.Name, info.Version)
	if info.Commit != "" {
		fmt.Fprintf(w, "  commit:  %s\n", info.ShortCommit())
	}
	if info.BuildDate != "" {
		fmt.Fprintf(w, "  built:   %s\n", info.BuildDate)
	}
	fmt.Fprintf(w, "  go:      %s\n", info.GoVersion)
	return nil
}

// options holds flags shared by the commands that talk to a backend.
type options struct {
	provider  string
	baseURL   string
	apiKey    string
	model     string
	asrMode   string
	source    string
	target    string
	retries   int
	rpm       int
	rpmPerOp  bool
	noCache   bool
	redisURL  string
	stateFile string
	verbose   bool
	jsonOut   bool
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("agrivaani "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func (o *options) registerStore(fs *flag.FlagSet) {
	fs.StringVar(&o.redisURL, "redis-url", "", "Redis URL for cache and preferences (default: "+envRedisURL+" env)")
	fs.StringVar(&o.stateFile, "state-file", "", "JSON file for cache and preferences (default: "+envStateFile+" env or user config dir)")
	fs.BoolVar(&o.verbose, "verbose", false, "Verbose logging")
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.provider, "provider", "bhashini", "Backend: bhashini, openai or mock")
	fs.StringVar(&o.baseURL, "base-url", "", "Bhashini gateway URL (default: "+envBaseURL+" env)")
	fs.StringVar(&o.apiKey, "api-key", "", "OpenAI API key (default: "+envAPIKey+" env)")
	fs.StringVar(&o.model, "model", "", "OpenAI chat model")
	fs.StringVar(&o.asrMode, "asr-encoding", string(provider.ASRMultipart), "ASR upload encoding: multipart or base64")
	fs.StringVar(&o.source, "source", agrivaani.DefaultSourceLanguage, "Source language code")
	fs.StringVar(&o.target, "target", agrivaani.DefaultTargetLanguage, "Target language code")
	fs.IntVar(&o.retries, "retries", 0, "Retry retryable failures this many times")
	fs.IntVar(&o.rpm, "rpm", 0, "Limit backend requests per minute (0 = unlimited)")
	fs.BoolVar(&o.rpmPerOp, "rpm-per-op", false, "Apply --rpm to each operation separately")
	fs.BoolVar(&o.noCache, "no-cache", false, "Do not cache translations")
	fs.BoolVar(&o.jsonOut, "json", false, "Output result as JSON")
	o.registerStore(fs)
}

func (o *options) logger(stderr io.Writer) *zap.Logger {
	if o.verbose {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(enc, zapcore.AddSync(stderr), zapcore.DebugLevel))
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(stderr), zapcore.WarnLevel))
}

func (o *options) backend(logger *zap.Logger) (agrivaani.Backend, error) {
	var b agrivaani.Backend

	switch o.provider {
	case "mock":
		b = provider.NewMockProvider()
	case "openai":
		key := firstNonEmpty(o.apiKey, os.Getenv(envAPIKey))
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key required (--api-key or %s env)", envAPIKey)
		}
		b = provider.NewOpenAIProvider(provider.OpenAIConfig{APIKey: key, Model: o.model})
	case "bhashini", "":
		url := firstNonEmpty(o.baseURL, os.Getenv(envBaseURL))
		if url == "" {
			return nil, fmt.Errorf("gateway URL required (--base-url or %s env)", envBaseURL)
		}
		enc := provider.ASREncoding(o.asrMode)
		if enc != provider.ASRMultipart && enc != provider.ASRBase64 {
			return nil, fmt.Errorf("unknown ASR encoding %q", o.asrMode)
		}
		b = provider.NewBhashiniProvider(provider.BhashiniConfig{BaseURL: url, ASREncoding: enc})
	default:
		return nil, fmt.Errorf("unknown provider %q", o.provider)
	}

	if o.rpm > 0 {
		b = agrivaani.NewRateLimitedBackend(b, agrivaani.RateLimitConfig{
			RequestsPerMinute: o.rpm,
			PerOperation:      o.rpmPerOp,
		})
	}
	if o.retries > 0 {
		cfg := agrivaani.DefaultRetryConfig()
		cfg.MaxRetries = o.retries
		cfg.OnRetry = func(op agrivaani.Operation, attempt int, delay time.Duration, err error) {
			logger.Warn("retrying operation",
				zap.String("op", string(op)),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
		}
		b = agrivaani.NewRetryableBackend(b, cfg)
	}

	return b, nil
}

// store opens the key-value store holding cached translations and the
// theme preference. The returned func releases it.
func (o *options) store() (agrivaani.TranslationCache, func(), error) {
	if url := firstNonEmpty(o.redisURL, os.Getenv(envRedisURL)); url != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{URL: url})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return rc, func() { _ = rc.Close() }, nil
	}

	path := firstNonEmpty(o.stateFile, os.Getenv(envStateFile))
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, fmt.Errorf("locating config dir: %w", err)
		}
		path = filepath.Join(dir, agrivaani.Name, "state.json")
	}

	fc, err := cache.OpenFileCache(path)
	if err != nil {
		return nil, nil, err
	}
	return fc, func() {}, nil
}

// client builds a Client with the configured backend. Unless caching is
// disabled it also opens the store, which is returned for reuse.
func (o *options) client(stderr io.Writer) (*agrivaani.Client, agrivaani.TranslationCache, func(), error) {
	logger := o.logger(stderr)
	b, err := o.backend(logger)
	if err != nil {
		return nil, nil, nil, err
	}
	opts := []agrivaani.ClientOption{agrivaani.WithLogger(logger)}

	var kv agrivaani.TranslationCache
	closeStore := func() {}
	if !o.noCache {
		var closeFn func()
		kv, closeFn, err = o.store()
		if err != nil {
			return nil, nil, nil, err
		}
		closeStore = closeFn
		opts = append(opts, agrivaani.WithCache(kv))
	}

	c := agrivaani.NewClient(b, opts...)
	return c, kv, func() {
		c.State().Close()
		closeStore()
		_ = logger.Sync()
	}, nil
}

// readInput returns the joined args, or stdin when there are none.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

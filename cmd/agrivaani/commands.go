package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ZaguanLabs/agrivaani"
	"github.com/ZaguanLabs/agrivaani/cache"
	"github.com/ZaguanLabs/agrivaani/processor"
	"github.com/ZaguanLabs/agrivaani/server"
)

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runTranslate(args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("translate", stderr)
	o.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := readInput(fs.Args(), stdin)
	if err != nil {
		return err
	}

	client, _, done, err := o.client(stderr)
	if err != nil {
		return err
	}
	defer done()

	translated, err := client.Translate(context.Background(), agrivaani.TranslationRequest{
		SourceLanguage: o.source,
		TargetLanguage: o.target,
		Text:           text,
	})

	if o.jsonOut {
		if encErr := writeJSON(stdout, agrivaani.ResultOf(translated, err)); encErr != nil {
			return encErr
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	fmt.Fprintln(stdout, translated)
	return nil
}

func runSpeech(args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("tts", stderr)
	o.register(fs)
	output := fs.String("output", "", "Output audio file (default: speech.<ext>)")
	outputShort := fs.String("o", "", "Output audio file (short for --output)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	text, err := readInput(fs.Args(), stdin)
	if err != nil {
		return err
	}

	client, _, done, err := o.client(stderr)
	if err != nil {
		return err
	}
	defer done()

	blob, err := client.SynthesizeSpeech(context.Background(), agrivaani.SpeechRequest{
		SourceLanguage: o.source,
		TargetLanguage: o.target,
		Text:           text,
	})
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	path := *output
	if path == "" {
		path = "speech" + blob.Extension()
	}
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}

	if o.jsonOut {
		return writeJSON(stdout, map[string]interface{}{
			"path":      path,
			"mime_type": blob.MIMEType,
			"bytes":     blob.Len(),
		})
	}
	fmt.Fprintf(stdout, "Wrote %d bytes of %s to %s\n", blob.Len(), blob.MIMEType, path)
	return nil
}

func runTranscribe(args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("asr", stderr)
	o.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := agrivaani.TranscribeRequest{
		SourceLanguage: o.source,
		TargetLanguage: o.target,
	}
	if fs.NArg() > 0 {
		path := fs.Arg(0)
		data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		req.Audio = data
		req.Filename = filepath.Base(path)
	}

	client, _, done, err := o.client(stderr)
	if err != nil {
		return err
	}
	defer done()

	translated, err := client.TranscribeAndTranslate(context.Background(), req)
	if err != nil {
		return fmt.Errorf("speech translation failed: %w", err)
	}

	if o.jsonOut {
		return writeJSON(stdout, map[string]string{
			"recognized_text": client.State().RecognizedText(),
			"translated_text": translated,
		})
	}
	fmt.Fprintln(stdout, translated)
	return nil
}

func runHTML(args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("html", stderr)
	o.register(fs)
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	concurrency := fs.Int("concurrency", 4, "Parallel translation requests")
	dryRun := fs.Bool("dry-run", false, "Show what would be translated without calling the backend")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	var input, inputName string
	if fs.NArg() == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		input, inputName = string(data), "stdin"
	} else {
		data, err := os.ReadFile(fs.Arg(0)) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		input, inputName = string(data), filepath.Base(fs.Arg(0))
	}

	if *dryRun {
		return runDryRun(input, inputName, o.target, stdout, o.jsonOut)
	}

	logger := o.logger(stderr)
	defer logger.Sync()
	backend, err := o.backend(logger)
	if err != nil {
		return err
	}

	opts := []agrivaani.DocumentOption{
		agrivaani.WithProcessor(processor.NewHTMLProcessor()),
		agrivaani.WithConcurrency(*concurrency),
		agrivaani.WithDocumentLogger(logger),
	}
	if !o.noCache {
		kv, closeStore, err := o.store()
		if err != nil {
			return err
		}
		defer closeStore()
		opts = append(opts, agrivaani.WithDocumentCache(kv))
	}

	translator := agrivaani.NewDocumentTranslator(o.source, o.target, backend, opts...)

	if !*quiet {
		fmt.Fprintf(stderr, "Translating %s to %s...\n", inputName, agrivaani.LanguageLabel(o.target))
	}

	start := time.Now()
	result, err := translator.ProcessHTML(context.Background(), input)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if o.jsonOut {
		return writeJSON(out, JSONOutput{
			Content:         result.Content,
			TotalNodes:      result.TotalNodes,
			TranslatedCount: result.TranslatedCount,
			CachedCount:     result.CachedCount,
			ElapsedMs:       elapsed.Milliseconds(),
		})
	}

	fmt.Fprint(out, result.Content)

	if !*quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Nodes found:  %d\n", result.TotalNodes)
		fmt.Fprintf(stderr, "  Translated:   %d\n", result.TranslatedCount)
		fmt.Fprintf(stderr, "  From cache:   %d\n", result.CachedCount)
	}

	return nil
}

// JSONOutput is the JSON form of an html command result.
type JSONOutput struct {
	Content         string `json:"content"`
	TotalNodes      int    `json:"total_nodes"`
	TranslatedCount int    `json:"translated_count"`
	CachedCount     int    `json:"cached_count"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

// runDryRun lists the text nodes that would be translated.
func runDryRun(input, inputName, targetLang string, stdout io.Writer, jsonOut bool) error {
	_, nodes, err := processor.NewHTMLProcessor().Extract(input)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	if jsonOut {
		type dryRunOutput struct {
			InputFile  string   `json:"input_file"`
			TargetLang string   `json:"target_lang"`
			NodeCount  int      `json:"node_count"`
			Texts      []string `json:"texts"`
		}

		texts := make([]string, len(nodes))
		for i, n := range nodes {
			texts[i] = n.Text
		}

		return writeJSON(stdout, dryRunOutput{
			InputFile:  inputName,
			TargetLang: targetLang,
			NodeCount:  len(nodes),
			Texts:      texts,
		})
	}

	fmt.Fprintf(stdout, "Dry run: %s -> %s\n", inputName, targetLang)
	fmt.Fprintf(stdout, "Found %d translatable text nodes:\n\n", len(nodes))

	for i, node := range nodes {
		text := []rune(node.Text)
		if len(text) > 60 {
			text = append(text[:57], []rune("...")...)
		}
		fmt.Fprintf(stdout, "%3d. %q\n", i+1, string(text))
		if node.Context != "" {
			fmt.Fprintf(stdout, "     Context: %s\n", node.Context)
		}
	}

	return nil
}

func runLanguages(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("languages", stderr)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	langs := agrivaani.Languages()
	if *jsonOut {
		return writeJSON(stdout, langs)
	}

	for _, lang := range langs {
		dir := ""
		if agrivaani.IsRTL(lang.Code) {
			dir = "  (rtl)"
		}
		fmt.Fprintf(stdout, "%-3s %-10s %s%s\n", lang.Code, lang.Label, agrivaani.ScriptTag(lang.Code), dir)
	}
	return nil
}

func runTheme(args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("theme", stderr)
	o.registerStore(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	kv, closeStore, err := o.store()
	if err != nil {
		return err
	}
	defer closeStore()
	themes := agrivaani.NewThemeStore(kv)

	if fs.NArg() == 0 {
		fmt.Fprintln(stdout, themes.Load())
		return nil
	}

	var theme agrivaani.Theme
	switch arg := fs.Arg(0); arg {
	case "toggle":
		if theme, err = themes.Toggle(); err != nil {
			return err
		}
	default:
		var ok bool
		if theme, ok = agrivaani.ParseTheme(arg); !ok {
			return fmt.Errorf("unknown theme %q (want light, dark or toggle)", arg)
		}
		if err := themes.Save(theme); err != nil {
			return err
		}
	}

	fmt.Fprintln(stdout, theme)
	return nil
}

func runCache(args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("cache", stderr)
	o.registerStore(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 2 {
		return fmt.Errorf("usage: agrivaani cache export|import <file>")
	}

	kv, closeStore, err := o.store()
	if err != nil {
		return err
	}
	defer closeStore()

	switch action, path := fs.Arg(0), fs.Arg(1); action {
	case "export":
		meta := map[string]string{"generator": agrivaani.Name + " " + agrivaani.Build().String()}
		if err := cache.NewExporter(kv).ExportToFile(path, meta); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Fprintf(stdout, "Exported to %s\n", path)
	case "import":
		result, err := cache.NewImporter(kv).ImportFromFile(path)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Fprintf(stdout, "Imported %d entries (%d failed)\n", result.Imported, result.Failed)
	default:
		return fmt.Errorf("unknown cache action %q", action)
	}
	return nil
}

func runServe(args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet("serve", stderr)
	o.register(fs)
	addr := fs.String("addr", ":8080", "Listen address")
	rateLimit := fs.Int("rate-limit", 60, "API requests per minute per client IP (0 = unlimited)")
	origins := fs.String("origins", "*", "Comma-separated CORS allowed origins")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, kv, done, err := o.client(stderr)
	if err != nil {
		return err
	}
	defer done()

	if kv == nil {
		var closeStore func()
		if kv, closeStore, err = o.store(); err != nil {
			return err
		}
		defer closeStore()
	}

	srv := server.New(client,
		server.WithLogger(o.logger(stderr)),
		server.WithThemeStore(agrivaani.NewThemeStore(kv)),
		server.WithRateLimit(*rateLimit, time.Minute),
		server.WithAllowedOrigins(splitList(*origins)...),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(stdout, "Serving on %s\n", *addr)
	return srv.ListenAndServe(ctx, *addr)
}

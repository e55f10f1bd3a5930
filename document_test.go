package agrivaani

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// lineProcessor treats every non-empty line as a translatable node.
type lineProcessor struct{}

func (lineProcessor) Extract(content string) (interface{}, []TextNode, error) {
	lines := strings.Split(content, "\n")
	var nodes []TextNode
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nodes = append(nodes, TextNode{Text: strings.TrimSpace(line), Hash: HashText(line), NodeType: "line"})
	}
	return lines, nodes, nil
}

func (lineProcessor) Apply(parsed interface{}, nodes []TextNode, translations map[string]string) (string, error) {
	lines := parsed.([]string)
	out := make([]string, len(lines))
	for i, line := range lines {
		if translated, ok := translations[HashText(line)]; ok {
			out[i] = translated
		} else {
			out[i] = line
		}
	}
	return strings.Join(out, "\n"), nil
}

func (lineProcessor) ContentType() string {
	return "text"
}

func TestDocumentTranslator_Process(t *testing.T) {
	backend := &stubBackend{
		translate: func(ctx context.Context, req TranslationRequest) (string, error) {
			return map[string]string{"Hello": "नमस्ते", "Water": "पानी"}[req.Text], nil
		},
	}
	tr := NewDocumentTranslator("en", "hi", backend, WithProcessor(lineProcessor{}))

	result, err := tr.Process(context.Background(), "Hello\n\nWater\nHello", "text")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Content != "नमस्ते\n\nपानी\nनमस्ते" {
		t.Errorf("unexpected content %q", result.Content)
	}
	if result.TotalNodes != 3 || result.TranslatedCount != 2 || result.CachedCount != 0 {
		t.Errorf("unexpected counts %+v", result)
	}
	if backend.Calls() != 2 {
		t.Errorf("duplicate lines should be translated once, got %d calls", backend.Calls())
	}
}

func TestDocumentTranslator_CacheHit(t *testing.T) {
	backend := &stubBackend{}
	cache := newMapCache()
	tr := NewDocumentTranslator("en", "hi", backend,
		WithProcessor(lineProcessor{}),
		WithDocumentCache(cache),
		WithConcurrency(2),
	)

	if _, err := tr.Process(context.Background(), "Hello\nWater", "text"); err != nil {
		t.Fatal(err)
	}
	result, err := tr.Process(context.Background(), "Hello\nWater", "text")
	if err != nil {
		t.Fatal(err)
	}

	if result.CachedCount != 2 || result.TranslatedCount != 0 {
		t.Errorf("second pass should be fully cached, got %+v", result)
	}
	if backend.Calls() != 2 {
		t.Errorf("backend calls = %d, want 2", backend.Calls())
	}
	if result.Content != "[Hello]\n[Water]" {
		t.Errorf("unexpected content %q", result.Content)
	}
}

func TestDocumentTranslator_SourceEqualsTarget(t *testing.T) {
	backend := &stubBackend{}
	tr := NewDocumentTranslator("hi", "hi_IN", backend, WithProcessor(lineProcessor{}))

	if !tr.IsSourceLang() {
		t.Fatal("hi and hi_IN should be the same language")
	}

	result, err := tr.Process(context.Background(), "नमस्ते", "text")
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "नमस्ते" || backend.Calls() != 0 {
		t.Error("content should pass through untouched")
	}
}

func TestDocumentTranslator_NoProcessor(t *testing.T) {
	tr := NewDocumentTranslator("en", "hi", &stubBackend{})

	_, err := tr.Process(context.Background(), "Hello", "markdown")

	var procErr *ProcessorError
	if !errors.As(err, &procErr) || procErr.ContentType != "markdown" {
		t.Errorf("expected ProcessorError for markdown, got %v", err)
	}
}

func TestDocumentTranslator_BackendError(t *testing.T) {
	backend := &stubBackend{
		translate: func(ctx context.Context, req TranslationRequest) (string, error) {
			return "", &RemoteServiceError{Operation: OpTranslate, StatusCode: 503, Message: "unavailable", Retryable: true}
		},
	}
	cache := newMapCache()
	tr := NewDocumentTranslator("en", "hi", backend, WithProcessor(lineProcessor{}), WithDocumentCache(cache))

	_, err := tr.Process(context.Background(), "Hello", "text")

	var remote *RemoteServiceError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteServiceError, got %v", err)
	}
	if len(cache.data) != 0 {
		t.Error("nothing should be cached on failure")
	}
}

func TestDocumentTranslator_Accessors(t *testing.T) {
	tr := NewDocumentTranslator("en", "ur", &stubBackend{}, WithConcurrency(0))

	if tr.SourceLang() != "en" || tr.TargetLang() != "ur" {
		t.Errorf("unexpected languages %s->%s", tr.SourceLang(), tr.TargetLang())
	}
	if tr.concurrency != 4 {
		t.Errorf("non-positive concurrency should keep the default, got %d", tr.concurrency)
	}
}

package agrivaani

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DocumentTranslator translates structured documents (HTML) node by node
// through a Backend, reusing cached translations where possible.
type DocumentTranslator struct {
	sourceLang  string
	targetLang  string
	backend     Backend
	cache       TranslationCache
	processors  map[string]ContentProcessor
	concurrency int
	logger      *zap.Logger
}

// DocumentOption is a functional option for configuring the DocumentTranslator.
type DocumentOption func(*DocumentTranslator)

// WithDocumentCache sets the translation cache.
func WithDocumentCache(cache TranslationCache) DocumentOption {
	return func(t *DocumentTranslator) {
		t.cache = cache
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) DocumentOption {
	return func(t *DocumentTranslator) {
		t.processors[processor.ContentType()] = processor
	}
}

// WithConcurrency sets how many node translations may be in flight at once.
func WithConcurrency(n int) DocumentOption {
	return func(t *DocumentTranslator) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// WithDocumentLogger sets the logger.
func WithDocumentLogger(logger *zap.Logger) DocumentOption {
	return func(t *DocumentTranslator) {
		t.logger = logger
	}
}

// NewDocumentTranslator creates a translator for the given language pair.
func NewDocumentTranslator(sourceLang, targetLang string, backend Backend, opts ...DocumentOption) *DocumentTranslator {
	t := &DocumentTranslator{
		sourceLang:  sourceLang,
		targetLang:  targetLang,
		backend:     backend,
		processors:  make(map[string]ContentProcessor),
		concurrency: 4,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Process translates content of the specified type.
func (t *DocumentTranslator) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	// Skip if source == target
	if t.IsSourceLang() {
		return &ProcessedContent{Content: content}, nil
	}

	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return &ProcessedContent{Content: content}, nil
	}

	translations, cacheMisses := lookupCached(t.cache, nodes, t.sourceLang, t.targetLang)
	cachedCount := len(translations)

	fresh, err := translateNodes(ctx, t.backend, cacheMisses, t.sourceLang, t.targetLang, t.concurrency)
	if err != nil {
		return nil, err
	}

	for hash, translated := range fresh {
		translations[hash] = translated
		if t.cache != nil {
			if err := t.cache.Set(CacheKey(hash, t.sourceLang, t.targetLang), translated); err != nil {
				t.logger.Warn("caching translation failed", zap.Error(err))
			}
		}
	}

	result, err := processor.Apply(parsed, nodes, translations)
	if err != nil {
		return nil, err
	}

	if contentType == "html" {
		result = t.setHTMLAttributes(result)
	}

	t.logger.Debug("document translated",
		zap.Int("nodes", len(nodes)),
		zap.Int("cached", cachedCount),
		zap.Int("translated", len(fresh)))

	return &ProcessedContent{
		Content:         result,
		TranslatedCount: len(fresh),
		CachedCount:     cachedCount,
		TotalNodes:      len(nodes),
	}, nil
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *DocumentTranslator) ProcessHTML(ctx context.Context, html string) (*ProcessedContent, error) {
	return t.Process(ctx, html, "html")
}

// IsSourceLang checks if the target language matches the source language.
// When true, translation can be bypassed.
func (t *DocumentTranslator) IsSourceLang() bool {
	return NormalizeLanguage(t.targetLang) == NormalizeLanguage(t.sourceLang)
}

// setHTMLAttributes sets lang and dir attributes on the <html> tag.
func (t *DocumentTranslator) setHTMLAttributes(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	htmlTag := doc.Find("html")
	if htmlTag.Length() > 0 {
		htmlTag.SetAttr("lang", ToHTMLLang(t.targetLang))
		htmlTag.SetAttr("dir", GetDirection(t.targetLang))
	}

	result, err := doc.Html()
	if err != nil {
		return html
	}

	return result
}

// TargetLang returns the target language.
func (t *DocumentTranslator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *DocumentTranslator) SourceLang() string {
	return t.sourceLang
}

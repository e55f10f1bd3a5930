package agrivaani

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// lookupCached splits nodes into cached translations (keyed by hash) and
// unique cache misses in document order.
func lookupCached(cache TranslationCache, nodes []TextNode, sourceLang, targetLang string) (map[string]string, []TextNode) {
	translations := make(map[string]string)
	var misses []TextNode
	seen := make(map[string]bool)

	for _, node := range nodes {
		if seen[node.Hash] {
			continue
		}
		seen[node.Hash] = true

		if cache != nil {
			if cached, ok := cache.Get(CacheKey(node.Hash, sourceLang, targetLang)); ok {
				translations[node.Hash] = cached
				continue
			}
		}
		misses = append(misses, node)
	}

	return translations, misses
}

// translateNodes translates each node through the backend with at most
// limit requests in flight. The first error cancels the remaining requests.
// Nodes whose response carried no translation keep their original text.
func translateNodes(ctx context.Context, backend Backend, nodes []TextNode, sourceLang, targetLang string, limit int) (map[string]string, error) {
	results := make(map[string]string, len(nodes))
	if len(nodes) == 0 || backend == nil {
		return results, nil
	}

	if limit <= 0 {
		limit = 1
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, node := range nodes {
		g.Go(func() error {
			translated, err := backend.Translate(ctx, TranslationRequest{
				SourceLanguage: sourceLang,
				TargetLanguage: targetLang,
				Text:           node.Text,
			})
			if err != nil {
				return err
			}
			if translated == "" {
				translated = node.Text
			}

			mu.Lock()
			results[node.Hash] = translated
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

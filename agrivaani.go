// Package agrivaani provides a client facade for Bhashini-style
// translation, text-to-speech and speech recognition services.
//
// The facade wraps three remote operations (translate, synthesize speech,
// transcribe and translate audio) behind a uniform contract. Each operation
// carries its own busy flag and rejects re-invocation while pending.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/agrivaani"
//	    "github.com/ZaguanLabs/agrivaani/cache"
//	    "github.com/ZaguanLabs/agrivaani/provider"
//	)
//
//	func main() {
//	    // Create backend
//	    p := provider.NewBhashiniProvider(provider.BhashiniConfig{
//	        BaseURL: "https://bhashini-python-frd9.onrender.com",
//	    })
//
//	    // Create client
//	    c := agrivaani.NewClient(p,
//	        agrivaani.WithCache(cache.NewInMemoryCache(3600)),
//	    )
//
//	    // Translate text
//	    out, err := c.Translate(context.Background(), agrivaani.TranslationRequest{
//	        SourceLanguage: "en",
//	        TargetLanguage: "hi",
//	        Text:           "Hello",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(out) // नमस्ते
//	}
package agrivaani

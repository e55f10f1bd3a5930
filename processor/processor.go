// Package processor provides document content processors.
package processor

import "github.com/ZaguanLabs/agrivaani"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = agrivaani.ContentProcessor

// TextNode is an alias to the main package type.
type TextNode = agrivaani.TextNode

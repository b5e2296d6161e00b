// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package ingest

import "strings"

const (
	// defaultMaxChunkLen caps merged-paragraph chunk size.
	defaultMaxChunkLen = 2000

	// minChunkLen drops fragments too short to carry meaning.
	minChunkLen = 20
)

// Chunker splits document text into paragraph-sized chunks suitable
// for one embedding each.
type Chunker struct {
	maxLen int
}

// NewChunker builds a chunker; maxLen <= 0 selects the default.
func NewChunker(maxLen int) *Chunker {
	if maxLen <= 0 {
		maxLen = defaultMaxChunkLen
	}
	return &Chunker{maxLen: maxLen}
}

// Chunk splits text on blank lines, merging consecutive paragraphs
// while they fit within maxLen. Chunks shorter than minChunkLen are
// dropped entirely.
func (c *Chunker) Chunk(text string) []string {
	paragraphs := splitParagraphs(text)

	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		if current.Len() > 0 && current.Len()+len(p)+2 > c.maxLen {
			chunks = appendChunk(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	return appendChunk(chunks, current.String())
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}

func appendChunk(chunks []string, chunk string) []string {
	chunk = strings.TrimSpace(chunk)
	if len(chunk) < minChunkLen {
		return chunks
	}
	return append(chunks, chunk)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_MergesSmallParagraphs(t *testing.T) {
	c := NewChunker(200)

	text := "First paragraph with enough text.\n\nSecond paragraph also has text.\n\nThird one too, plenty of it."
	chunks := c.Chunk(text)

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "First paragraph")
	assert.Contains(t, chunks[0], "Third one")
}

func TestChunker_SplitsAtMaxLen(t *testing.T) {
	c := NewChunker(100)

	para := strings.Repeat("word ", 16) // ~80 chars
	text := para + "\n\n" + para + "\n\n" + para
	chunks := c.Chunk(text)

	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
	}
}

func TestChunker_DropsTinyFragments(t *testing.T) {
	c := NewChunker(0)

	chunks := c.Chunk("ok\n\nshort")
	assert.Empty(t, chunks)
}

func TestChunker_EmptyInput(t *testing.T) {
	c := NewChunker(0)

	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("\n\n\n\n"))
}

func TestChunker_NormalizesCRLF(t *testing.T) {
	c := NewChunker(0)

	chunks := c.Chunk("First paragraph with enough text.\r\n\r\nSecond paragraph with enough text.")
	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0], "\r")
}

func TestChunker_OversizedParagraphKeptWhole(t *testing.T) {
	c := NewChunker(50)

	para := strings.Repeat("continuous text without blank lines ", 5)
	chunks := c.Chunk(para)

	// A single paragraph never splits mid-sentence, even over maxLen.
	require.Len(t, chunks, 1)
	assert.Greater(t, len(chunks[0]), 50)
}

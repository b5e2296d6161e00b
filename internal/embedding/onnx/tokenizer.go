// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package onnx

import (
	"encoding/json"
	"os"
	"strings"

	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// wordPieceTokenizer is a minimal BERT-style WordPiece tokenizer backed
// by the vocabulary of a HuggingFace tokenizer.json. It implements
// lowercase greedy longest-prefix matching, which is what the MiniLM
// family expects.
type wordPieceTokenizer struct {
	vocab map[string]int

	clsID int64
	sepID int64
	unkID int64
	padID int64
}

func loadTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Model.Vocab) == 0 {
		return nil, slmerr.New(slmerr.CodeEmbedderInitFailure, "tokenizer vocabulary is empty")
	}

	t := &wordPieceTokenizer{vocab: file.Model.Vocab}
	t.clsID = t.lookupSpecial("[CLS]", 101)
	t.sepID = t.lookupSpecial("[SEP]", 102)
	t.unkID = t.lookupSpecial("[UNK]", 100)
	t.padID = t.lookupSpecial("[PAD]", 0)
	return t, nil
}

func (t *wordPieceTokenizer) lookupSpecial(token string, fallback int64) int64 {
	if id, ok := t.vocab[token]; ok {
		return int64(id)
	}
	return fallback
}

// Encode converts text to fixed-length input IDs and an attention mask.
// The sequence is [CLS] tokens... [SEP] padded with [PAD] to maxLen;
// text longer than the window is truncated.
func (t *wordPieceTokenizer) Encode(text string, maxLen int) ([]int64, []int64) {
	tokens := t.tokenize(text)

	// Reserve room for [CLS] and [SEP].
	if len(tokens) > maxLen-2 {
		tokens = tokens[:maxLen-2]
	}

	inputIDs := make([]int64, maxLen)
	attentionMask := make([]int64, maxLen)

	inputIDs[0] = t.clsID
	attentionMask[0] = 1
	for i, id := range tokens {
		inputIDs[i+1] = id
		attentionMask[i+1] = 1
	}
	end := len(tokens) + 1
	inputIDs[end] = t.sepID
	attentionMask[end] = 1
	for i := end + 1; i < maxLen; i++ {
		inputIDs[i] = t.padID
	}

	return inputIDs, attentionMask
}

func (t *wordPieceTokenizer) tokenize(text string) []int64 {
	var ids []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word == "" {
			continue
		}
		if id, ok := t.vocab[word]; ok {
			ids = append(ids, int64(id))
			continue
		}
		ids = append(ids, t.wordPiece(word)...)
	}
	return ids
}

// wordPiece splits a word into vocabulary subwords using greedy
// longest-prefix matching; continuations carry the ## prefix.
func (t *wordPieceTokenizer) wordPiece(word string) []int64 {
	var ids []int64
	start := 0
	for start < len(word) {
		matched := false
		for end := len(word); end > start; end-- {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				ids = append(ids, int64(id))
				start = end
				matched = true
				break
			}
		}
		if !matched {
			ids = append(ids, t.unkID)
			start++
		}
	}
	return ids
}

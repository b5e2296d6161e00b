// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

// Package onnx implements the local embedding variant: an in-process
// sentence-transformer (all-MiniLM-L6-v2 by default) run through ONNX
// Runtime. After the model assets are on disk it needs no network
// access. Output is a 384-dimensional unit vector.
package onnx

import (
	"context"
	"math"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

const (
	// miniLMDimensions is the hidden size of all-MiniLM-L6-v2.
	miniLMDimensions = 384

	// maxSequenceLength is the token window the model was exported with.
	maxSequenceLength = 128
)

// Config configures the local ONNX embedder.
type Config struct {
	// ModelPath is the path to the exported ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the HuggingFace tokenizer.json.
	TokenizerPath string

	// LibraryPath optionally overrides the onnxruntime shared library
	// location. Empty uses the platform default search path.
	LibraryPath string
}

// environment state is process-wide in onnxruntime: initialize once,
// never tear down until exit.
var (
	envOnce sync.Once
	envErr  error
)

func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// Embedder generates embeddings in-process through ONNX Runtime.
type Embedder struct {
	session   *ort.DynamicAdvancedSession
	tokenizer *wordPieceTokenizer

	// mu serializes inference; the session is not safe for concurrent Run.
	mu sync.Mutex
}

// New loads the tokenizer and creates an inference session. The ONNX
// environment is initialized lazily on first construction and lives for
// the rest of the process.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, slmerr.New(slmerr.CodeEmbedderConfigInvalid, "onnx: model path is required")
	}
	if cfg.TokenizerPath == "" {
		return nil, slmerr.New(slmerr.CodeEmbedderConfigInvalid, "onnx: tokenizer path is required")
	}

	if err := initEnvironment(cfg.LibraryPath); err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeEmbedderInitFailure, "onnx: initializing runtime environment")
	}

	tokenizer, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeEmbedderInitFailure,
			"onnx: loading tokenizer %s", cfg.TokenizerPath)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeEmbedderInitFailure,
			"onnx: creating session for %s", cfg.ModelPath)
	}

	return &Embedder{session: session, tokenizer: tokenizer}, nil
}

// Embed tokenizes text, runs the model, mean-pools the hidden states
// over attended tokens, and returns a unit-normalized vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	inputIDs, attentionMask := e.tokenizer.Encode(text, maxSequenceLength)
	tokenTypeIDs := make([]int64, maxSequenceLength)

	shape := ort.NewShape(1, int64(maxSequenceLength))

	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeEmbedderInitFailure, "onnx: creating input_ids tensor")
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeEmbedderInitFailure, "onnx: creating attention_mask tensor")
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeEmbedderInitFailure, "onnx: creating token_type_ids tensor")
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}

	e.mu.Lock()
	err = e.session.Run([]ort.Value{idsTensor, maskTensor, typeTensor}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeEmbedderUpstreamFailure, "onnx: inference")
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	if len(outputs) == 0 || outputs[0] == nil {
		return nil, slmerr.New(slmerr.CodeEmbedderUpstreamFailure, "onnx: no output tensor returned")
	}

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, slmerr.New(slmerr.CodeEmbedderUpstreamFailure, "onnx: unexpected output tensor type")
	}

	embedding, err := meanPool(hidden.GetData(), hidden.GetShape(), attentionMask)
	if err != nil {
		return nil, err
	}

	return normalize(embedding), nil
}

// Dimensions returns the fixed output length of the local model.
func (e *Embedder) Dimensions() int {
	return miniLMDimensions
}

// Close destroys the inference session. The runtime environment itself
// stays up for the life of the process.
func (e *Embedder) Close() error {
	if e.session == nil {
		return nil
	}
	if err := e.session.Destroy(); err != nil {
		return slmerr.Wrapf(err, slmerr.CodeEmbedderInitFailure, "onnx: destroying session")
	}
	e.session = nil
	return nil
}

// meanPool reduces [1, seq, hidden] states to a [hidden] vector by
// averaging over attended positions. A model exported with pooling
// baked in yields [1, hidden] and is passed through.
func meanPool(data []float32, shape ort.Shape, attentionMask []int64) ([]float32, error) {
	switch len(shape) {
	case 2:
		if len(data) < miniLMDimensions {
			return nil, slmerr.Errorf(slmerr.CodeEmbedderUpstreamFailure,
				"onnx: pooled output has %d values, expected %d", len(data), miniLMDimensions)
		}
		out := make([]float32, miniLMDimensions)
		copy(out, data[:miniLMDimensions])
		return out, nil

	case 3:
		seqLen, hiddenSize := int(shape[1]), int(shape[2])
		if shape[0] != 1 {
			return nil, slmerr.Errorf(slmerr.CodeEmbedderUpstreamFailure,
				"onnx: expected batch size 1, got %d", shape[0])
		}
		if hiddenSize != miniLMDimensions {
			return nil, slmerr.Errorf(slmerr.CodeEmbedderUpstreamFailure,
				"onnx: hidden size %d, expected %d", hiddenSize, miniLMDimensions)
		}

		out := make([]float32, hiddenSize)
		var attended float32
		for i := 0; i < seqLen && i < len(attentionMask); i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			offset := i * hiddenSize
			for j := 0; j < hiddenSize; j++ {
				out[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return out, nil
		}
		for j := range out {
			out[j] /= attended
		}
		return out, nil

	default:
		return nil, slmerr.Errorf(slmerr.CodeEmbedderUpstreamFailure,
			"onnx: unexpected output shape %v", shape)
	}
}

func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// Package chat answers questions about the dataset by retrieving the most
// similar row chunks and handing them to a chat model.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"heartdash/internal"
	"heartdash/internal/errors"
	"heartdash/internal/frame"
	"heartdash/internal/telemetry"
)

var logger = internal.DefaultLogger.Component("Chat")

// Embedder turns texts into vectors
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer answers a prompt
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Options tunes retrieval
type Options struct {
	TopK          int
	ChunkSize     int
	ChunkOverlap  int
	SystemContext string
}

// DefaultOptions retrieves four chunks of 500 characters
func DefaultOptions() Options {
	return Options{
		TopK:          4,
		ChunkSize:     ChunkSize,
		ChunkOverlap:  ChunkOverlap,
		SystemContext: "You answer questions about global heart disease statistics using only the provided data rows",
	}
}

// Answer is the reply to one question
type Answer struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Sources  []Match `json:"sources"`
}

// Source returns the rows to index and a version that changes whenever the
// rows do
type Source func() (*frame.Frame, uint64)

// Bot is the retrieval-augmented chatbot. The index is built from the
// dataset on the first question and rebuilt when the source version moves.
type Bot struct {
	embedder  Embedder
	completer Completer
	source    Source
	opts      Options

	mu      sync.Mutex
	index   *Index
	version uint64
}

// NewBot creates a chatbot. A nil embedder or completer gives a disabled bot.
func NewBot(embedder Embedder, completer Completer, source Source, opts Options) *Bot {
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = ChunkSize
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 0
	}
	return &Bot{embedder: embedder, completer: completer, source: source, opts: opts}
}

// Enabled reports whether the bot can answer
func (b *Bot) Enabled() bool {
	return b != nil && b.embedder != nil && b.completer != nil
}

// Ask answers a question from the top matching chunks
func (b *Bot) Ask(ctx context.Context, question string) (*Answer, error) {
	if !b.Enabled() {
		telemetry.ChatRequests.WithLabelValues("disabled").Inc()
		return nil, errors.ExternalServiceError("chat", fmt.Errorf("OPENAI_API_KEY is not set"))
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.InvalidInput("question is empty")
	}

	answer, err := b.ask(ctx, question)
	if err != nil {
		telemetry.ChatRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	telemetry.ChatRequests.WithLabelValues("ok").Inc()
	return answer, nil
}

func (b *Bot) ask(ctx context.Context, question string) (*Answer, error) {
	idx, err := b.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}
	vectors, err := b.embedder.Embed(ctx, []string{question})
	if err != nil || len(vectors) != 1 {
		return nil, errors.ExternalServiceError("embeddings", err)
	}
	matches := idx.Search(vectors[0], b.opts.TopK)

	reply, err := b.completer.Complete(ctx, b.opts.SystemContext, Prompt(question, matches))
	if err != nil {
		return nil, errors.ExternalServiceError("chat completion", err)
	}
	return &Answer{Question: question, Answer: strings.TrimSpace(reply), Sources: matches}, nil
}

// ensureIndex builds the index once per source version. A failed build
// is retried on the next question.
func (b *Bot) ensureIndex(ctx context.Context) (*Index, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, version := b.source()
	if b.index != nil && b.version == version {
		return b.index, nil
	}

	if f == nil || f.IsEmpty() {
		return nil, errors.NoData("no data to index")
	}
	chunks, err := Split(Documents(f), b.opts.ChunkSize, b.opts.ChunkOverlap)
	if err != nil {
		return nil, errors.Wrap(err, "failed to split documents")
	}
	vectors, err := b.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, errors.ExternalServiceError("embeddings", err)
	}
	if len(vectors) != len(chunks) {
		return nil, errors.InternalError(fmt.Sprintf("got %d embeddings for %d chunks", len(vectors), len(chunks)))
	}
	b.index, b.version = newIndex(chunks, vectors), version
	logger.Info("Indexed %d chunks from %d rows (dataset version %d)", len(chunks), f.Len(), version)
	return b.index, nil
}

// Prompt stuffs the retrieved chunks ahead of the question
func Prompt(question string, matches []Match) string {
	var sb strings.Builder
	sb.WriteString("Use the following data to answer the question. If the data does not contain the answer, say you don't know.\n\n")
	for i, m := range matches {
		fmt.Fprintf(&sb, "--- record %d ---\n%s\n", i+1, m.Text)
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer:")
	return sb.String()
}

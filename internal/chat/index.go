package chat

import (
	"math"
	"sort"
	"strings"

	"heartdash/internal/frame"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunking parameters for row documents
const (
	ChunkSize    = 500
	ChunkOverlap = 50
)

// Documents renders each row as "col: value" lines. Missing values are
// skipped.
func Documents(f *frame.Frame) []string {
	cols := f.Columns()
	docs := make([]string, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		lines := make([]string, 0, len(cols))
		for _, c := range cols {
			if !row.Has(c) {
				continue
			}
			lines = append(lines, c+": "+row.Text(c))
		}
		if len(lines) > 0 {
			docs = append(docs, strings.Join(lines, "\n"))
		}
	}
	return docs
}

// Split chunks documents with a recursive character splitter
func Split(docs []string, size, overlap int) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
	)
	var chunks []string
	for _, doc := range docs {
		parts, err := splitter.SplitText(doc)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, parts...)
	}
	return chunks, nil
}

// Match is a retrieved chunk with its similarity to the query
type Match struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Index is an in-memory vector index
type Index struct {
	texts   []string
	vectors [][]float32
	norms   []float64
}

func newIndex(texts []string, vectors [][]float32) *Index {
	idx := &Index{texts: texts, vectors: vectors, norms: make([]float64, len(vectors))}
	for i, v := range vectors {
		idx.norms[i] = norm(v)
	}
	return idx
}

// Len counts indexed chunks
func (idx *Index) Len() int {
	return len(idx.texts)
}

// Search returns the k chunks most similar to query by cosine similarity.
// Ties keep index order.
func (idx *Index) Search(query []float32, k int) []Match {
	qn := norm(query)
	matches := make([]Match, 0, len(idx.texts))
	for i, v := range idx.vectors {
		matches = append(matches, Match{Text: idx.texts[i], Score: cosine(query, v, qn, idx.norms[i])})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}

func norm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	n := min(len(a), len(b))
	dot := 0.0
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (na * nb)
}

// Package search ranks document chunks against a question.
package search

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/blevesearch/bleve/v2"

	"github.com/dgallion1/contractlens/internal/chunker"
)

// RankChunks returns at most limit chunks that best match question,
// in their original document order. Chunks are scored with BM25 over an
// in-memory index. When nothing matches, the first limit chunks are used.
func RankChunks(question string, chunks []chunker.Chunk, limit int) ([]chunker.Chunk, error) {
	if limit <= 0 || len(chunks) <= limit {
		return chunks, nil
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for i, c := range chunks {
		if err := batch.Index(strconv.Itoa(i), map[string]any{"text": c.Text}); err != nil {
			return nil, fmt.Errorf("index chunk %d: %w", c.Index, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(question))
	req.Size = limit
	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if len(res.Hits) == 0 {
		return chunks[:limit], nil
	}

	picked := make([]int, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		picked = append(picked, i)
	}
	slices.Sort(picked)

	out := make([]chunker.Chunk, 0, len(picked))
	for _, i := range picked {
		out = append(out, chunks[i])
	}
	return out, nil
}

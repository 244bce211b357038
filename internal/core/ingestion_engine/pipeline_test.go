package ingestion_engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docuchat-ai/docuchat/internal/core"
	"github.com/docuchat-ai/docuchat/internal/models"
)

type fakeStorage struct {
	objects map[string][]byte
	err     error
}

func (f *fakeStorage) Download(ctx context.Context, fileKey string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.objects[fileKey], nil
}

func (f *fakeStorage) URL(fileKey string) string {
	return "https://bucket.s3.us-east-1.amazonaws.com/" + fileKey
}

type fakeExtractor struct {
	pages []models.Page
	err   error
	calls int
}

func (f *fakeExtractor) ExtractPages(ctx context.Context, data []byte) ([]models.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

// fakeEmbedder derives a small deterministic vector from the text so
// identical chunks always embed identically.
type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	failOn string // fail any text containing this marker
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("embedding model exploded")
	}
	return []float32{float32(len(text)), float32(text[0]), 1}, nil
}

type fakeIndex struct {
	mu      sync.Mutex
	upserts map[string][]models.VectorRecord
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{upserts: make(map[string][]models.VectorRecord)}
}

func (f *fakeIndex) Upsert(ctx context.Context, namespace string, records []models.VectorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts[namespace] = append(f.upserts[namespace], records...)
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]models.SearchMatch, error) {
	return nil, nil
}

func (f *fakeIndex) Close() error { return nil }

func newTestPipeline(storage core.ObjectClient, ext core.PageExtractor, emb core.EmbeddingProvider, idx core.VectorIndex) *Pipeline {
	return NewPipeline(storage, ext, emb, idx, &IngestConfig{
		ChunkBytes:        36000,
		MetadataTextBytes: 36000,
		PageWorkers:       4,
		EmbedWorkers:      4,
	}, zap.NewNop())
}

func TestIngestTwoPageDocument(t *testing.T) {
	// Page 1 carries 40000 bytes, past the 36000-byte chunk ceiling,
	// so it must split into at least two chunks. Page 2 is tiny and
	// yields exactly one.
	pages := []models.Page{
		{PageContent: strings.Repeat("a", 40000), PageNumber: 1},
		{PageContent: strings.Repeat("b", 100), PageNumber: 2},
	}
	storage := &fakeStorage{objects: map[string][]byte{"uploads/big.pdf": []byte("%PDF")}}
	index := newFakeIndex()
	p := newTestPipeline(storage, &fakeExtractor{pages: pages}, &fakeEmbedder{}, index)

	doc, err := p.Ingest(context.Background(), "uploads/big.pdf")
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount)
	assert.GreaterOrEqual(t, doc.ChunkCount, 3, "page 1 must split at least twice, page 2 once")
	assert.Equal(t, NamespaceForKey("uploads/big.pdf"), doc.Namespace)
	require.NotNil(t, doc.Preview)
	assert.Equal(t, 1, doc.Preview.Metadata.PageNumber, "preview comes from the first page")

	records := index.upserts[doc.Namespace]
	require.Len(t, records, doc.ChunkCount, "one record per chunk")

	pageNums := map[int]int{}
	for _, rec := range records {
		require.NotEmpty(t, rec.ID)
		require.NotEmpty(t, rec.Values)
		pageNums[rec.Metadata.PageNumber]++
	}
	assert.GreaterOrEqual(t, pageNums[1], 2)
	assert.Equal(t, 1, pageNums[2])
}

func TestIngestNamespaceIsolation(t *testing.T) {
	// The same raw bytes ingested under two different keys must land
	// in two different namespaces with identical content-derived ids.
	pages := []models.Page{{PageContent: "identical content on both runs", PageNumber: 1}}
	storage := &fakeStorage{objects: map[string][]byte{
		"uploads/a.pdf": []byte("%PDF"),
		"uploads/b.pdf": []byte("%PDF"),
	}}
	index := newFakeIndex()
	p := newTestPipeline(storage, &fakeExtractor{pages: pages}, &fakeEmbedder{}, index)

	docA, err := p.Ingest(context.Background(), "uploads/a.pdf")
	require.NoError(t, err)
	docB, err := p.Ingest(context.Background(), "uploads/b.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, docA.Namespace, docB.Namespace)

	recsA := index.upserts[docA.Namespace]
	recsB := index.upserts[docB.Namespace]
	require.Len(t, recsA, 1)
	require.Len(t, recsB, 1)
	assert.Equal(t, recsA[0].ID, recsB[0].ID, "identical text hashes to the identical id")
}

func TestIngestIdempotentIDs(t *testing.T) {
	pages := []models.Page{{PageContent: "stable content", PageNumber: 1}}
	storage := &fakeStorage{objects: map[string][]byte{"uploads/doc.pdf": []byte("%PDF")}}
	index := newFakeIndex()
	p := newTestPipeline(storage, &fakeExtractor{pages: pages}, &fakeEmbedder{}, index)

	_, err := p.Ingest(context.Background(), "uploads/doc.pdf")
	require.NoError(t, err)
	_, err = p.Ingest(context.Background(), "uploads/doc.pdf")
	require.NoError(t, err)

	ns := NamespaceForKey("uploads/doc.pdf")
	records := index.upserts[ns]
	require.Len(t, records, 2, "fake index appends, two runs recorded")
	assert.Equal(t, records[0].ID, records[1].ID, "re-ingesting unchanged content reuses the id")
}

func TestIngestEmptyPageContributesNothing(t *testing.T) {
	pages := []models.Page{
		{PageContent: "", PageNumber: 1},
		{PageContent: "real content", PageNumber: 2},
	}
	storage := &fakeStorage{objects: map[string][]byte{"uploads/doc.pdf": []byte("%PDF")}}
	index := newFakeIndex()
	p := newTestPipeline(storage, &fakeExtractor{pages: pages}, &fakeEmbedder{}, index)

	doc, err := p.Ingest(context.Background(), "uploads/doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, 1, doc.ChunkCount)
	records := index.upserts[doc.Namespace]
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Metadata.PageNumber)
}

func TestIngestAllPagesEmptySkipsUpsert(t *testing.T) {
	pages := []models.Page{{PageContent: "", PageNumber: 1}}
	storage := &fakeStorage{objects: map[string][]byte{"uploads/blank.pdf": []byte("%PDF")}}
	index := newFakeIndex()
	p := newTestPipeline(storage, &fakeExtractor{pages: pages}, &fakeEmbedder{}, index)

	doc, err := p.Ingest(context.Background(), "uploads/blank.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.ChunkCount)
	assert.Nil(t, doc.Preview)
	assert.Empty(t, index.upserts)
}

func TestIngestSourceUnavailable(t *testing.T) {
	ext := &fakeExtractor{}
	p := newTestPipeline(&fakeStorage{err: errors.New("connection refused")}, ext, &fakeEmbedder{}, newFakeIndex())

	_, err := p.Ingest(context.Background(), "uploads/doc.pdf")
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
	assert.Zero(t, ext.calls, "extraction must not start when the download fails")
}

func TestIngestEmptyObjectIsUnavailable(t *testing.T) {
	p := newTestPipeline(&fakeStorage{objects: map[string][]byte{}}, &fakeExtractor{}, &fakeEmbedder{}, newFakeIndex())

	_, err := p.Ingest(context.Background(), "uploads/missing.pdf")
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
}

func TestIngestExtractionFailure(t *testing.T) {
	storage := &fakeStorage{objects: map[string][]byte{"uploads/bad.pdf": []byte("not a pdf")}}
	p := newTestPipeline(storage, &fakeExtractor{err: errors.New("corrupt xref table")}, &fakeEmbedder{}, newFakeIndex())

	_, err := p.Ingest(context.Background(), "uploads/bad.pdf")
	assert.ErrorIs(t, err, core.ErrExtractionFailed)
}

func TestIngestEmbeddingFailureAbortsRun(t *testing.T) {
	// One poisoned chunk anywhere fails the whole run and nothing at
	// all reaches the index.
	pages := []models.Page{
		{PageContent: "fine content", PageNumber: 1},
		{PageContent: "POISON content", PageNumber: 2},
		{PageContent: "more fine content", PageNumber: 3},
	}
	storage := &fakeStorage{objects: map[string][]byte{"uploads/doc.pdf": []byte("%PDF")}}
	index := newFakeIndex()
	p := newTestPipeline(storage, &fakeExtractor{pages: pages}, &fakeEmbedder{failOn: "POISON"}, index)

	_, err := p.Ingest(context.Background(), "uploads/doc.pdf")
	assert.ErrorIs(t, err, core.ErrEmbeddingFailed)
	assert.Empty(t, index.upserts, "no records may be upserted after an embedding failure")
}

func TestIngestUpsertFailure(t *testing.T) {
	pages := []models.Page{{PageContent: "content", PageNumber: 1}}
	storage := &fakeStorage{objects: map[string][]byte{"uploads/doc.pdf": []byte("%PDF")}}
	index := newFakeIndex()
	index.err = errors.New("index write timeout")
	p := newTestPipeline(storage, &fakeExtractor{pages: pages}, &fakeEmbedder{}, index)

	_, err := p.Ingest(context.Background(), "uploads/doc.pdf")
	assert.ErrorIs(t, err, core.ErrUpsertFailed)
}

func TestIngestChunkOrderPreserved(t *testing.T) {
	// Many pages prepared and embedded in parallel must still come out
	// flattened in page order, with vectors bound to their own chunks.
	var pages []models.Page
	for i := 1; i <= 20; i++ {
		pages = append(pages, models.Page{
			PageContent: strings.Repeat(string(rune('a'+i-1)), 10),
			PageNumber:  i,
		})
	}
	storage := &fakeStorage{objects: map[string][]byte{"uploads/doc.pdf": []byte("%PDF")}}
	index := newFakeIndex()
	p := newTestPipeline(storage, &fakeExtractor{pages: pages}, &fakeEmbedder{}, index)

	doc, err := p.Ingest(context.Background(), "uploads/doc.pdf")
	require.NoError(t, err)

	records := index.upserts[doc.Namespace]
	require.Len(t, records, 20)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.Metadata.PageNumber, "flattened order must follow page order")
		// The fake embeds the first byte of the text; it must match the
		// chunk the vector claims to belong to.
		assert.Equal(t, float32('a'+i), rec.Values[1], "vector must stay bound to its own chunk")
	}
}

package embedscore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/botirk38/embedscore/chunker"
	"github.com/botirk38/embedscore/options"
	pmock "github.com/botirk38/embedscore/providers/mock"
	"github.com/botirk38/embedscore/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// demoProvider embeds the words of the classic "automobile" demo.
func demoProvider() *pmock.EmbeddingProvider {
	p := new(pmock.EmbeddingProvider)
	p.On("EmbedText", mock.Anything, "automobile").Return([]float64{1, 0.1, 0}, nil)
	p.On("EmbedText", mock.Anything, "vehicle").Return([]float64{0.9, 0.2, 0}, nil)
	p.On("EmbedText", mock.Anything, "dinosaur").Return([]float64{0, 1, 0.3}, nil)
	p.On("EmbedText", mock.Anything, "stick").Return([]float64{0.1, 0, 1}, nil)
	return p
}

func newTestCollection(t *testing.T, p *pmock.EmbeddingProvider, opts ...options.Option) *Collection {
	t.Helper()
	opts = append([]options.Option{options.WithLRUBackend(16), options.WithCustomProvider(p)}, opts...)
	c, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_RequiresBackendAndProvider(t *testing.T) {
	_, err := New(options.WithLRUBackend(4))
	assert.Error(t, err)

	_, err = New(options.WithCustomProvider(new(pmock.EmbeddingProvider)))
	assert.Error(t, err)
}

func TestNewCollection_RejectsUnknownMetric(t *testing.T) {
	c := newTestCollection(t, new(pmock.EmbeddingProvider))
	_, err := NewCollection(c.backend, c.provider, "euclidean")
	assert.ErrorIs(t, err, similarity.ErrUnsupportedMetric)
}

func TestCollection_CompareKeepsCandidateOrder(t *testing.T) {
	c := newTestCollection(t, demoProvider())

	candidates := []string{"vehicle", "dinosaur", "stick"}
	results, err := c.Compare(context.Background(), "automobile", candidates)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, candidates[i], r.ID)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 2.0)
	}
	assert.Less(t, results[0].Score, results[1].Score, "vehicle should be closer than dinosaur")
	assert.Less(t, results[0].Score, results[2].Score, "vehicle should be closer than stick")
}

func TestCollection_CompareChunkedRespectsConcurrency(t *testing.T) {
	ch, err := chunker.NewFixedOverlapChunker(chunker.DefaultChunkConfig())
	require.NoError(t, err)

	p := &countingProvider{}
	c, err := New(
		options.WithLRUBackend(4),
		options.WithCustomProvider(p),
		options.WithChunker(ch),
		options.WithConcurrency(2),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	candidates := make([]string, 30)
	for i := range candidates {
		candidates[i] = "candidate"
	}
	results, err := c.Compare(context.Background(), "query", candidates)
	require.NoError(t, err)
	assert.Len(t, results, 30)
	assert.LessOrEqual(t, p.peak.Load(), int32(2))
}

func TestCollection_CompareRejectsEmptyText(t *testing.T) {
	c := newTestCollection(t, demoProvider())

	_, err := c.Compare(context.Background(), "", []string{"vehicle"})
	assert.ErrorIs(t, err, similarity.ErrInvalidInput)

	_, err = c.Compare(context.Background(), "automobile", []string{"vehicle", ""})
	assert.ErrorIs(t, err, similarity.ErrInvalidInput)
}

func TestCollection_CompareDegenerateEmbedding(t *testing.T) {
	p := demoProvider()
	p.On("EmbedText", mock.Anything, "nothing").Return([]float64{0, 0, 0}, nil)
	c := newTestCollection(t, p)

	results, err := c.Compare(context.Background(), "automobile", []string{"vehicle", "nothing"})
	assert.Nil(t, results)
	assert.ErrorIs(t, err, similarity.ErrDegenerateVector)
}

func TestCollection_AddAndRank(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t, demoProvider())

	for _, word := range []string{"stick", "vehicle", "dinosaur"} {
		require.NoError(t, c.Add(ctx, word, word))
	}

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := c.Rank(ctx, "automobile")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "stick", results[0].ID)
	assert.Equal(t, "vehicle", results[1].ID)
	assert.Equal(t, "dinosaur", results[2].ID)
	assert.Less(t, results[1].Score, results[0].Score)

	ok, err := c.Contains(ctx, "stick")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Contains(ctx, "automobile")
	require.NoError(t, err)
	assert.False(t, ok, "ranking a query must not store it")

	rec, found, err := c.Get(ctx, "vehicle")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "vehicle", rec.Text)
}

func TestCollection_AddValidation(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t, demoProvider())

	assert.ErrorIs(t, c.Add(ctx, "", "vehicle"), similarity.ErrInvalidInput)
	assert.ErrorIs(t, c.Add(ctx, "x", ""), similarity.ErrInvalidInput)
	assert.ErrorIs(t, c.AddVector(ctx, "x", nil), similarity.ErrInvalidInput)
	assert.ErrorIs(t, c.AddVector(ctx, "", similarity.Vector{1}), similarity.ErrInvalidInput)
}

func TestCollection_RankVectorErrors(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t, new(pmock.EmbeddingProvider))

	require.NoError(t, c.AddVector(ctx, "a", similarity.Vector{1, 0}))
	require.NoError(t, c.AddVector(ctx, "b", similarity.Vector{1, 0, 0}))

	results, err := c.RankVector(ctx, similarity.Vector{1, 0})
	assert.Nil(t, results)
	assert.ErrorIs(t, err, similarity.ErrInvalidInput)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestCollection_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t, new(pmock.EmbeddingProvider))

	require.NoError(t, c.AddVector(ctx, "a", similarity.Vector{1, 0}))
	require.NoError(t, c.AddVector(ctx, "b", similarity.Vector{0, 1}))
	require.NoError(t, c.Delete(ctx, "a"))

	keys, err := c.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)

	require.NoError(t, c.Flush(ctx))
	results, err := c.RankVector(ctx, similarity.Vector{1, 1})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCollection_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := New(
		options.WithRedisBackend(ctx, mr.Addr(), "test:"),
		options.WithCustomProvider(demoProvider()),
	)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Add(ctx, "v", "vehicle"))
	require.NoError(t, c.Add(ctx, "d", "dinosaur"))

	results, err := c.Rank(ctx, "automobile")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "v", results[0].ID)
	assert.Equal(t, "d", results[1].ID)
}

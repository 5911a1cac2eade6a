package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/miru/internal/embedding"
	"github.com/hyperjump/miru/internal/vector"
)

func BenchmarkRank(b *testing.B) {
	corpus := make([]vector.Entry, 1000)
	for i := 0; i < 1000; i++ {
		v := make([]float64, embedding.Dimensions)
		v[i%embedding.Dimensions] = 1.0
		corpus[i] = vector.Entry{ID: fmt.Sprintf("img-%d", i), Vector: v}
	}
	query := make([]float64, embedding.Dimensions)
	query[0] = 1.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vector.Rank(query, corpus, 10)
	}
}

func BenchmarkCosineSimilarity(b *testing.B) {
	e := embedding.NewLocalEmbedder(embedding.Dimensions, nil)
	ctx := context.Background()
	a, _ := e.Embed(ctx, "a red sports car parked downtown")
	c, _ := e.Embed(ctx, "a golden retriever in a park")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vector.CosineSimilarity(a, c)
	}
}

func BenchmarkLocalEmbedder_Embed(b *testing.B) {
	e := embedding.NewLocalEmbedder(embedding.Dimensions, nil)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}

func BenchmarkCachedEmbedder_EmbedHit(b *testing.B) {
	e := embedding.NewCachedEmbedder(embedding.NewLocalEmbedder(embedding.Dimensions, nil), 100)
	ctx := context.Background()
	_, _ = e.Embed(ctx, "benchmark query text for embedding")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}

func BenchmarkCodecEncodeDecode(b *testing.B) {
	e := embedding.NewLocalEmbedder(embedding.Dimensions, nil)
	v, _ := e.Embed(context.Background(), "a stone arch bridge in fog")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, _ := vector.Encode(v)
		_, _ = vector.Decode(s)
	}
}

package core

import "context"

// Generator turns a prompt into text. Backed by a hosted language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewsSource is the external news-search capability polled by the news connector.
type NewsSource interface {
	TopNews(ctx context.Context) ([]Article, error)
	Search(ctx context.Context, query string) ([]Article, error)
}

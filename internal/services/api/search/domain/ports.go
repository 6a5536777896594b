package domain

import "context"

// Index is the search index bridge, documents added are invisible to Search until Commit
type Index interface {
	Add(ctx context.Context, docs []Document) Ack
	Delete(ctx context.Context, ids []int64) (Ack, error)
	Commit(ctx context.Context) (Ack, error)
	Clear(ctx context.Context) (Ack, error)
	Search(ctx context.Context, in SearchInput) ([]Hit, error)
}

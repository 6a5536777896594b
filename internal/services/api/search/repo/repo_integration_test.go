//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pubreg/internal/platform/store"
	"pubreg/internal/services/api/search/domain"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
}

func TestSearchIndex_Integration(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2}})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	r := NewPG("publication_search_index").Bind(st.PG)
	if err := r.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	// idempotent
	if err := r.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	docs := []domain.Document{
		{ID: 1, Title: "Distinct counting in registries", Authors: []string{"Berg"}, Year: 2020},
		{ID: 2, Title: "Graph theory", Keywords: []string{"counting"}, Year: 2021},
		{ID: 3, Title: "Unrelated"},
	}
	if n, err := r.Upsert(ctx, docs); err != nil || n != 3 {
		t.Fatalf("upsert n=%d err=%v", n, err)
	}

	hits, err := r.Search(ctx, "counting", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("uncommitted documents leaked: %+v", hits)
	}

	if n, err := r.Commit(ctx); err != nil || n != 3 {
		t.Fatalf("commit n=%d err=%v", n, err)
	}
	hits, err = r.Search(ctx, "counting", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 || hits[0].ID != 1 {
		t.Fatalf("hits = %+v, title match should rank first", hits)
	}

	// re-adding unpublishes until the next commit
	if _, err := r.Upsert(ctx, docs[:1]); err != nil {
		t.Fatal(err)
	}
	hits, _ = r.Search(ctx, "counting", 10)
	if len(hits) != 1 || hits[0].ID != 2 {
		t.Fatalf("hits after re-add = %+v", hits)
	}

	if n, err := r.Delete(ctx, []int64{2, 42}); err != nil || n != 1 {
		t.Fatalf("delete n=%d err=%v", n, err)
	}
	if n, err := r.Clear(ctx); err != nil || n != 2 {
		t.Fatalf("clear n=%d err=%v", n, err)
	}
}

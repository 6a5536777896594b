//go:build integration_pg
// +build integration_pg

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"pubreg/internal/platform/store/pg"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func postgresDSN(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env:          map[string]string{"POSTGRES_PASSWORD": "postgres"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, port.Port())
}

func TestStore_Integration(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var events []pg.Event
	st, err := Open(ctx, Config{AppName: "pubreg-test", PG: PGConfig{Enabled: true, URL: postgresDSN(t), MaxConns: 2}},
		WithQueryObserver(pg.ObserverFunc(func(_ context.Context, ev pg.Event) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		})))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close(ctx) })
	if err := st.Guard(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := st.PG.Exec(ctx, `CREATE TABLE report_view (publication_id bigint, year int)`); err != nil {
		t.Fatal(err)
	}

	// rolled back
	rollback := errors.New("rollback")
	err = st.PG.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO report_view VALUES (1, 2020)`); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("tx err = %v", err)
	}

	err = st.PG.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO report_view VALUES (1, 2020), (1, 2020), (2, 2021)`)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	rows, err := st.PG.Query(ctx, `SELECT year, count(DISTINCT publication_id) AS n FROM report_view GROUP BY year ORDER BY year`)
	if err != nil {
		t.Fatal(err)
	}
	if cols := rows.Columns(); len(cols) != 2 || cols[1] != "n" {
		t.Fatalf("columns = %v", cols)
	}
	got, err := Collect(rows, func(r Row) ([2]int64, error) {
		var v [2]int64
		err := r.Scan(&v[0], &v[1])
		return v, err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != [2]int64{2020, 1} || got[1] != [2]int64{2021, 1} {
		t.Fatalf("got %v", got)
	}

	var app string
	if err := st.PG.QueryRow(ctx, `SELECT current_setting('application_name')`).Scan(&app); err != nil || app != "pubreg-test" {
		t.Fatalf("application_name = %q err %v", app, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) < 4 {
		t.Fatalf("observer saw %d statements", len(events))
	}
}

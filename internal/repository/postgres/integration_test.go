//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/talkwell/federation/internal/model"
	repo "github.com/talkwell/federation/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "federation_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/federation_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	t.Run("keypair_repository", func(t *testing.T) {
		kr := repo.NewKeypairRepository(conn)

		_, err := kr.GetByIdentity(ctx, 1)
		require.ErrorIs(t, err, model.ErrNotFound)

		saved, err := kr.Create(ctx, model.Keypair{
			UID:        1,
			PublicKey:  "public-pem",
			PrivateKey: "private-pem",
		})
		require.NoError(t, err)
		require.Equal(t, model.Identity(1), saved.UID)
		require.False(t, saved.CreatedAt.IsZero())

		got, err := kr.GetByIdentity(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, "public-pem", got.PublicKey)
		require.Equal(t, "private-pem", got.PrivateKey)
	})

	t.Run("actor_repository", func(t *testing.T) {
		ar := repo.NewActorRepository(conn)

		ids := []string{"https://remote.example/uid/1", "https://remote.example/uid/2"}
		require.NoError(t, ar.Assert(ctx, ids))
		// Re-asserting known ids is a no-op.
		require.NoError(t, ar.Assert(ctx, ids))
		require.NoError(t, ar.Assert(ctx, nil))

		stub, err := ar.GetByID(ctx, ids[0])
		require.NoError(t, err)
		require.Equal(t, ids[0], stub.ID)
		require.Empty(t, stub.Endpoint())

		saved, err := ar.Upsert(ctx, model.RemoteActor{
			ID:          ids[0],
			Inbox:       "https://remote.example/uid/1/inbox",
			SharedInbox: "https://remote.example/inbox",
			PublicKey:   "remote-pem",
		})
		require.NoError(t, err)
		require.Equal(t, "https://remote.example/inbox", saved.Endpoint())
		require.False(t, saved.LastSeenAt.IsZero())

		got, err := ar.GetByID(ctx, ids[0])
		require.NoError(t, err)
		require.Equal(t, "remote-pem", got.PublicKey)

		_, err = ar.GetByID(ctx, "https://unknown.example/uid/9")
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, conn.Ping(ctx))
	})
}

func TestKeypairRepository_ConcurrentCreateConverges(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	kr := repo.NewKeypairRepository(conn)

	const writers = 8
	results := make([]model.Keypair, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := kr.Create(ctx, model.Keypair{
				UID:        77,
				PublicKey:  fmt.Sprintf("public-%d", i),
				PrivateKey: fmt.Sprintf("private-%d", i),
			})
			require.NoError(t, err)
			results[i] = saved
		}()
	}
	wg.Wait()

	// Exactly one writer wins; every caller sees the winning pair.
	for _, saved := range results {
		require.Equal(t, results[0].PublicKey, saved.PublicKey)
		require.Equal(t, results[0].PrivateKey, saved.PrivateKey)
	}
}

func TestActorRepository_UpsertRefreshesLastSeen(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ar := repo.NewActorRepository(conn)

	first, err := ar.Upsert(ctx, model.RemoteActor{
		ID:    "https://remote.example/uid/5",
		Inbox: "https://remote.example/uid/5/inbox",
	})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	second, err := ar.Upsert(ctx, model.RemoteActor{
		ID:    "https://remote.example/uid/5",
		Inbox: "https://remote.example/uid/5/inbox-moved",
	})
	require.NoError(t, err)
	require.Equal(t, "https://remote.example/uid/5/inbox-moved", second.Inbox)
	require.True(t, second.LastSeenAt.After(first.LastSeenAt))
}

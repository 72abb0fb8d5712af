package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overmind/db"
	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/riskibarqy/overmind/internal/domain/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("overmind"),
		tcpostgres.WithUsername("overmind"),
		tcpostgres.WithPassword("overmind"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	src, err := db.Source()
	require.NoError(t, err)
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("apply migrations: %v", err)
	}
	srcErr, dbErr := m.Close()
	require.NoError(t, srcErr)
	require.NoError(t, dbErr)

	conn, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestIdentityRepository_ConcurrentInsertKeepsOneRow(t *testing.T) {
	conn := newTestDB(t)
	factory := NewUnitOfWorkFactory(conn)
	ctx := context.Background()
	locator := identity.Locator{Region: 2, Realm: 1, ProfileID: 315071}

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[int64]struct{}{}
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			uow, err := factory.Begin(ctx)
			if err != nil {
				t.Errorf("begin: %v", err)
				return
			}
			defer func() { _ = uow.Rollback() }()

			got, ok, err := uow.Identities().Insert(ctx, identity.Identity{Locator: locator, DisplayName: "Serral"})
			if err != nil {
				t.Errorf("insert identity: %v", err)
				return
			}
			if err := uow.Commit(); err != nil {
				t.Errorf("commit: %v", err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			}
			ids[got.ID] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)

	var count int
	require.NoError(t, conn.GetContext(ctx, &count, `SELECT COUNT(*) FROM identities`))
	assert.Equal(t, 1, count)
}

func TestIdentityRepository_RoundTripsStanding(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	uow, err := NewUnitOfWorkFactory(conn).Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	player, created, err := uow.Roster().InsertPlayer(ctx, roster.Player{ProName: "serral"})
	require.NoError(t, err)
	require.True(t, created)

	joined := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	item := identity.Identity{
		Locator:      identity.Locator{Region: 2, Realm: 1, ProfileID: 315071},
		DisplayName:  "Serral",
		ClanTag:      "ENCE",
		FavoriteRace: identity.RaceZerg,
		Standing: &identity.Standing{
			LadderID: 292783, MMR: 7020, Rank: 2, Points: 1290, PreviousRank: 3, Wins: 210, Losses: 40, JoinedAt: joined,
		},
		RosterPlayerID: player.ID,
	}
	_, created, err = uow.Identities().Insert(ctx, item)
	require.NoError(t, err)
	require.True(t, created)

	placeholder := identity.Identity{Locator: identity.Locator{Region: 3, Realm: 1, ProfileID: 2275101}, DisplayName: "Maru"}
	_, created, err = uow.Identities().Insert(ctx, placeholder)
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, uow.Commit())

	check, err := NewUnitOfWorkFactory(conn).Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = check.Rollback() }()

	got, found, err := check.Identities().GetByLocator(ctx, item.Locator)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, got.Standing)
	assert.Equal(t, 7020, got.Standing.MMR)
	assert.Equal(t, joined, got.Standing.JoinedAt)
	assert.Equal(t, player.ID, got.RosterPlayerID)
	assert.Equal(t, identity.RaceZerg, got.FavoriteRace)

	got, found, err = check.Identities().GetByLocator(ctx, placeholder.Locator)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Placeholder())
	assert.Zero(t, got.RosterPlayerID)
}

func TestRosterRepository_CaseInsensitiveAndTeamAssignment(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()

	var enceID, liquidID int64
	require.NoError(t, conn.GetContext(ctx, &enceID, `INSERT INTO teams (clan_name, clan_tag) VALUES ('ENCE', 'ENCE') RETURNING id`))
	require.NoError(t, conn.GetContext(ctx, &liquidID, `INSERT INTO teams (clan_name, clan_tag) VALUES ('Team Liquid', 'Liquid') RETURNING id`))

	uow, err := NewUnitOfWorkFactory(conn).Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	first, created, err := uow.Roster().InsertPlayer(ctx, roster.Player{ProName: "serral"})
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := uow.Roster().InsertPlayer(ctx, roster.Player{ProName: "Serral"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	team, found, err := uow.Roster().GetTeamByClanTag(ctx, "ence")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, enceID, team.ID)

	require.NoError(t, uow.Roster().AssignTeam(ctx, first.ID, enceID))
	require.NoError(t, uow.Roster().AssignTeam(ctx, first.ID, liquidID))

	got, found, err := uow.Roster().GetPlayerByProName(ctx, "SERRAL")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, enceID, got.TeamID)

	_, found, err = uow.Roster().GetTeamByClanTag(ctx, "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReplayRepository_InsertLinksAndDedup(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	factory := NewUnitOfWorkFactory(conn)

	uow, err := factory.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	mapRecord, created, err := uow.Maps().Insert(ctx, gamemap.Record{
		Hash: digest.Sum([]byte("ever dream")), Name: "Ever Dream LE", Width: 200, Height: 184, TileSet: "Ulnar",
	})
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = uow.Maps().Insert(ctx, gamemap.Record{Hash: mapRecord.Hash, Name: "Ever Dream LE", Width: 200, Height: 184})
	require.NoError(t, err)
	assert.False(t, created)

	serral, _, err := uow.Identities().Insert(ctx, identity.Identity{Locator: identity.Locator{Region: 2, Realm: 1, ProfileID: 315071}})
	require.NoError(t, err)
	maru, _, err := uow.Identities().Insert(ctx, identity.Identity{Locator: identity.Locator{Region: 3, Realm: 1, ProfileID: 2275101}})
	require.NoError(t, err)

	start := time.Date(2021, 5, 1, 20, 0, 0, 0, time.UTC)
	record := replay.Record{
		Hash:       digest.Sum([]byte("g1")),
		MapID:      mapRecord.ID,
		WinnerID:   serral.ID,
		Versions:   []int64{5, 0, 11, 90136},
		StartTime:  start,
		EndTime:    start.Add(14 * time.Minute),
		RealLength: 14 * time.Minute,
		IsLadder:   true,
	}
	stored, created, err := uow.Replays().Insert(ctx, record)
	require.NoError(t, err)
	require.True(t, created)

	links := []replay.IdentityLink{
		{ReplayID: stored.ID, IdentityID: serral.ID, Slot: 0},
		{ReplayID: stored.ID, IdentityID: maru.ID, Slot: 1},
	}
	require.NoError(t, uow.Replays().InsertLinks(ctx, links))
	require.NoError(t, uow.Replays().InsertLinks(ctx, links))
	require.NoError(t, uow.Commit())

	check, err := factory.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = check.Rollback() }()

	exists, err := check.Replays().ExistsByHash(ctx, record.Hash)
	require.NoError(t, err)
	assert.True(t, exists)

	got, found, err := check.Replays().GetByHash(ctx, record.Hash)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, record.Versions, got.Versions)
	assert.Equal(t, 14*time.Minute, got.RealLength)
	assert.Equal(t, serral.ID, got.WinnerID)

	_, created, err = check.Replays().Insert(ctx, record)
	require.NoError(t, err)
	assert.False(t, created)

	stored2, err := check.Replays().ListLinks(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, links, stored2)
}

func TestUnitOfWork_RollbackDiscardsRows(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	factory := NewUnitOfWorkFactory(conn)

	uow, err := factory.Begin(ctx)
	require.NoError(t, err)
	_, _, err = uow.Roster().InsertPlayer(ctx, roster.Player{ProName: "maru"})
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())
	require.NoError(t, uow.Rollback())

	var count int
	require.NoError(t, conn.GetContext(ctx, &count, `SELECT COUNT(*) FROM players`))
	assert.Zero(t, count)
}

func TestSettingsRepository_Get(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	_, err := conn.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ($1, $2)`, SettingReplayDataPath, "/srv/replays")
	require.NoError(t, err)

	repo := NewSettingsRepository(conn)
	value, found, err := repo.Get(ctx, SettingReplayDataPath)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/srv/replays", value)

	_, found, err = repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

package sqlite

import (
	"testing"

	"github.com/UrikezZ/52HZSchoolBot/internal/repository"
	"github.com/UrikezZ/52HZSchoolBot/internal/repository/repotest"
	"github.com/UrikezZ/52HZSchoolBot/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) repository.Store {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, migrations.Dir("sqlite3")))

	return New(db)
}

func TestStoreContract(t *testing.T) {
	repotest.Run(t, newTestStore)
}

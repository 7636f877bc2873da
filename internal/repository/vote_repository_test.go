package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openMockDB opens GORM over a sqlmock connection so the exact SQL of the
// vote transaction can be asserted against the postgres dialect.
func openMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestCastVote_FirstVoteAdjustsPointsRelatively(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "votes" WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs(int64(3), int64(7), 1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "post_id", "value"}))
	mock.ExpectExec(`INSERT INTO "votes"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The points update must be a relative adjustment, never a
	// read-modify-write of a fetched total.
	mock.ExpectExec(`UPDATE "posts" SET "points"=points \+ \$1 WHERE id = \$2`).
		WithArgs(1, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := repo.CastVote(3, 7, 1)
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCastVote_FlipDoublesTheDelta(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "votes" WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs(int64(3), int64(7), 1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "post_id", "value"}).AddRow(3, 7, 1))
	mock.ExpectExec(`UPDATE "votes" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "posts" SET "points"=points \+ \$1 WHERE id = \$2`).
		WithArgs(-2, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := repo.CastVote(3, 7, -1)
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCastVote_RepeatVoteWritesNothing(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "votes" WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs(int64(3), int64(7), 1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "post_id", "value"}).AddRow(3, 7, 1))
	mock.ExpectCommit()

	changed, err := repo.CastVote(3, 7, 1)
	require.NoError(t, err)
	require.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCastVote_MissingPostRollsBack(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	changed, err := repo.CastVote(3, 404, 1)
	require.ErrorIs(t, err, ErrPostNotFound)
	require.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

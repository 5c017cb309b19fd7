package bookinglink

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_GetByToken(t *testing.T) {
	repo, mock := newRepo(t)
	token := uuid.New()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM booking_links WHERE token = \$1$`).
		WithArgs(token.String()).
		WillReturnRows(sqlmock.NewRows(linkColumns).
			AddRow(int64(1), token.String(), int64(1), nil, "Maria", nil, nil, true, now, now))

	link, err := repo.GetByToken(context.Background(), nil, token)

	require.NoError(t, err)
	assert.Equal(t, token, link.Token)
	assert.False(t, link.IsBound())
	assert.Equal(t, "Maria", *link.TempName)
}

func TestRepository_GetByToken_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`FROM booking_links`).WillReturnRows(sqlmock.NewRows(linkColumns))

	_, err := repo.GetByToken(context.Background(), nil, uuid.New())
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestRepository_BindClient(t *testing.T) {
	t.Run("bound", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec(`UPDATE booking_links SET client_id = \$1, updated_at = NOW\(\) WHERE id = \$2 AND \(client_id IS NULL OR client_id = \$3\)`).
			WithArgs(int64(100), int64(1), int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.BindClient(context.Background(), nil, 1, 100))
	})

	t.Run("bound to another client", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec(`UPDATE booking_links`).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.BindClient(context.Background(), nil, 1, 100), ErrAlreadyBound)
	})
}

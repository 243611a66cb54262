package repo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userCols = []string{"id", "email", "hashed_password", "created_at"}

// bcryptArg checks that the stored value is a hash of the expected password.
type bcryptArg string

func (a bcryptArg) Match(v driver.Value) bool {
	hash, ok := v.(string)
	return ok && bcrypt.CompareHashAndPassword([]byte(hash), []byte(a)) == nil
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice@example.com", bcryptArg("password123")).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(7, "alice@example.com", "$2a$hash", now))

	user, err := NewUserRepo(db).Create(context.Background(), &models.UserCreate{
		Email: " Alice@Example.com ", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestUserRepo_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   models.UserCreate
		msg  string
	}{
		{"bad email", models.UserCreate{Email: "alice", Password: "password123"}, "invalid email"},
		{"short password", models.UserCreate{Email: "a@b.c", Password: "short"}, "at least 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := newMock(t)
			_, err := NewUserRepo(db).Create(context.Background(), &tt.in)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	_, err := NewUserRepo(db).Create(context.Background(), &models.UserCreate{
		Email: "alice@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestUserRepo_Lookups(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE id = \\$1").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(7, "alice@example.com", "h", now))
	mock.ExpectQuery("FROM users WHERE email = \\$1").WithArgs("bob@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = repo.GetByEmail(context.Background(), "Bob@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{HashedPassword: string(hash)}

	assert.True(t, CheckPassword(user, "password123"))
	assert.False(t, CheckPassword(user, "password124"))
}

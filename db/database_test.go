package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: FavoriteMovie.userId, FavoriteMovie.movieId")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsConnectionNotAcceptingError(t *testing.T) {
	assert.True(t, IsConnectionNotAcceptingError(fmt.Errorf("query: %w", &pgconn.PgError{Code: "57P03"})))
	assert.False(t, IsConnectionNotAcceptingError(errors.New("57P03")))
}

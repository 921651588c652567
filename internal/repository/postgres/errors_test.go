package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestSQLState(t *testing.T) {
	assert.Equal(t, "23505", SQLState(&pq.Error{Code: "23505"}))
	assert.Equal(t, "40001", SQLState(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "40001"})))
	assert.Empty(t, SQLState(errors.New("boom")))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	err := classify(&pgconn.PgError{Code: codeUniqueViolation})
	assert.ErrorIs(t, err, domain.ErrIntegrity)
	assert.Equal(t, codeUniqueViolation, SQLState(err))

	err = classify(&pq.Error{Code: codeLockNotAvailable})
	assert.ErrorIs(t, err, domain.ErrIntegrity)

	plain := errors.New("connection refused")
	assert.Same(t, plain, classify(plain))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(fmt.Errorf("get: %w", sql.ErrNoRows)))
	assert.False(t, isNoRows(errors.New("other")))
}

func TestClassifyName(t *testing.T) {
	err := classifyName("ingredient", "Flour", fmt.Errorf("failed to create ingredient: %w",
		&pq.Error{Code: codeUniqueViolation, Constraint: "ingredients_name_key"}))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrIntegrity)
	assert.Contains(t, err.Error(), `"Flour" already exists`)

	err = classifyName("menu item", "Pizza", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "menu_items_name_key"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = classifyName("menu item", "Pizza", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "menu_items_pkey"})
	assert.ErrorIs(t, err, domain.ErrIntegrity)

	err = classifyName("menu item", "Pizza", &pq.Error{Code: codeSerializationFailure})
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

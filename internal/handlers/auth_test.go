package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/notesapi/internal/models"
)

func TestNewTokenKey(t *testing.T) {
	key := newTokenKey()
	require.Len(t, key, 40)
	for _, r := range key {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

func TestNewTokenKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key := newTokenKey()
		require.False(t, seen[key], "duplicate token key generated")
		seen[key] = true
	}
}

func TestIsDuplicateEntry(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'users.username'"}
	assert.True(t, isDuplicateEntry(dup))
	assert.True(t, isDuplicateEntry(fmt.Errorf("exec: %w", dup)))

	assert.False(t, isDuplicateEntry(&mysql.MySQLError{Number: 1064, Message: "syntax error"}))
	assert.False(t, isDuplicateEntry(errors.New("Duplicate entry (not a driver error)")))
}

func newAuthApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewAuthHandler(db)
	app := fiber.New()
	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)
	return app, mock
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app, mock := newAuthApp(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'users.username'"})

	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(`{"username":"alice","password":"Str0ngPass!"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.FieldErrors
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"A user with that username already exists."}, body["username"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterWeakPassword(t *testing.T) {
	app, _ := newAuthApp(t)

	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(`{"username":"alice","password":"1234"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.FieldErrors
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body, "password")
	assert.Len(t, body["password"], 2)
}

func TestLoginRepeatedReturnsSameToken(t *testing.T) {
	app, mock := newAuthApp(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	require.NoError(t, err)

	const storedKey = "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"

	// Two logins: each inserts-or-ignores, then reads back whatever key the
	// user row already holds.
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT id, password_hash FROM users").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(1), string(hash)))
		mock.ExpectExec("INSERT INTO auth_tokens").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT token_key FROM auth_tokens").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"token_key"}).AddRow(storedKey))
	}

	var tokens []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"alice","password":"Str0ngPass!"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body models.TokenResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		tokens = append(tokens, body.Token)
	}

	assert.Equal(t, tokens[0], tokens[1])
	assert.Equal(t, storedKey, tokens[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	app, mock := newAuthApp(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, password_hash FROM users").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(1), string(hash)))

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"alice","password":"wrong-password"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.Detail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid credentials", body.Detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

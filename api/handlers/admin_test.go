package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Loicqra12/ovpr-api/api/handlers"
	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/databases/mocks"
	"github.com/Loicqra12/ovpr-api/models"
)

func TestAdmin_AdminLoginHandlerInvalidBody(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/admin/login", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	h := handlers.Admin{ADB: databases.NewAdminDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.AdminLoginHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request")
}

func TestAdmin_AdminLoginHandlerMissingFields(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/admin/login", strings.NewReader(`{"email": "admin@ovpr.ci"}`))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	h := handlers.Admin{ADB: databases.NewAdminDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.AdminLoginHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "email and password required")
}

func TestAdmin_AdminLoginHandlerUnknownAdmin(t *testing.T) {
	body := `{"email": "nobody@ovpr.ci", "password": "hunter2"}`
	req, err := http.NewRequest("POST", "/api/v1/admin/login", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(assert.AnError)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "admins").Return(conn)

	h := handlers.Admin{ADB: databases.NewAdminDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.AdminLoginHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials")
}

func TestAdmin_AdminLoginHandlerWrongPassword(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	body := `{"email": "admin@ovpr.ci", "password": "wrong-password"}`
	req, err := http.NewRequest("POST", "/api/v1/admin/login", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.AdminUser)
		arg.Email = "admin@ovpr.ci"
		// bcrypt hash of a different password
		arg.PasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
		arg.Active = true
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "admins").Return(conn)

	h := handlers.Admin{ADB: databases.NewAdminDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(h.AdminLoginHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CREDENTIALS")
}

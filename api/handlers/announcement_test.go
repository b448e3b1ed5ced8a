package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Loicqra12/ovpr-api/api/handlers"
	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/databases/mocks"
	"github.com/Loicqra12/ovpr-api/models"
)

func TestAnnouncement_AnnouncementHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/announcements", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Announcement)
		*arg = []models.Announcement{
			{Title: "Scheduled maintenance", Content: "The registry will be down Sunday night", Priority: "medium", IsActive: true},
		}
	})
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper)
	db.On("Collection", "announcements").Return(conn)

	a := handlers.Announcement{ADB: databases.NewAnnouncementDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(a.AnnouncementHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Scheduled maintenance")
}

func TestAnnouncement_AnnouncementHandlerEmpty(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/announcements", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(nil)
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorHelper)
	db.On("Collection", "announcements").Return(conn)

	a := handlers.Announcement{ADB: databases.NewAnnouncementDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(a.AnnouncementHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestAnnouncement_CreateAnnouncementHandlerMissingTitle(t *testing.T) {
	body := `{"content": "no title here"}`
	req, err := http.NewRequest("POST", "/api/v1/announcement", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	a := handlers.Announcement{ADB: databases.NewAnnouncementDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(a.CreateAnnouncementHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "title and content are required")
}

func TestAnnouncement_CreateAnnouncementHandlerSuccess(t *testing.T) {
	body := `{"title": "New feature", "content": "Found item matching is live", "priority": "high", "creator": "admin-1"}`
	req, err := http.NewRequest("POST", "/api/v1/announcement", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	insertOneResultHelper := &mocks.InsertOneResultHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(insertOneResultHelper, nil)
	db.On("Collection", "announcements").Return(conn)

	a := handlers.Announcement{ADB: databases.NewAnnouncementDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(a.CreateAnnouncementHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "New feature")
	assert.Contains(t, rr.Body.String(), `"isActive":true`)
}

func TestAnnouncement_DeleteAnnouncementHandlerInvalidID(t *testing.T) {
	req, err := http.NewRequest("DELETE", "/api/v1/announcement/1234", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"announcement_id": "1234"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	a := handlers.Announcement{ADB: databases.NewAnnouncementDatabase(db)}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(a.DeleteAnnouncementHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to get objectID from Hex")
}

package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Loicqra12/ovpr-api/api/handlers"
	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/databases/mocks"
	"github.com/Loicqra12/ovpr-api/models"
)

func newWizardHandler(db databases.DatabaseHelper) handlers.Wizard {
	return handlers.Wizard{
		SDB:      databases.NewWizardSessionDatabase(db),
		DDB:      databases.NewDeclarationDatabase(db),
		Captcha:  handlers.NewCaptchaVerifier(),
		Uploader: handlers.NewUploader(),
	}
}

func TestWizard_StartHandlerUnknownType(t *testing.T) {
	body := `{"declarationType": "borrowed"}`
	req, err := http.NewRequest("POST", "/api/v1/wizard", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.StartHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown declaration type")
}

func TestWizard_StartHandlerSuccess(t *testing.T) {
	body := `{"declarationType": "stolen", "ownerID": "owner-1"}`
	req, err := http.NewRequest("POST", "/api/v1/wizard", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	insertOneResultHelper := &mocks.InsertOneResultHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(insertOneResultHelper, nil)
	db.On("Collection", "wizard_sessions").Return(conn)

	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.StartHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var stored models.WizardSession
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	assert.Equal(t, "stolen", stored.DeclarationType)
	assert.Equal(t, 0, stored.StepIndex)
	// the stolen flow carries the police step
	assert.Contains(t, stored.Steps, "police")
}

func TestWizard_SessionHandlerInvalidID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/wizard/1234", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"session_id": "1234"})

	db := &MockDatabaseHelper{}
	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.SessionHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid session id")
}

func TestWizard_StepHandlerAdvances(t *testing.T) {
	body := `{"category": "electronics", "subcategory": "phone"}`
	req, err := http.NewRequest("PUT", "/api/v1/wizard/608cafe595eb9dc05379b7f4/step", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"session_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.WizardSession)
		arg.DeclarationType = "lost"
		arg.StepIndex = 0
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	db.On("Collection", "wizard_sessions").Return(conn)

	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.StepHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var stored models.WizardSession
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	assert.Equal(t, 1, stored.StepIndex)
	assert.Equal(t, "electronics", stored.Draft.Category)
}

func TestWizard_StepHandlerValidationError(t *testing.T) {
	body := `{}`
	req, err := http.NewRequest("PUT", "/api/v1/wizard/608cafe595eb9dc05379b7f4/step", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"session_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.WizardSession)
		arg.DeclarationType = "lost"
		arg.StepIndex = 0
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	db.On("Collection", "wizard_sessions").Return(conn)

	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.StepHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "category is required")
}

func TestWizard_BackHandlerAtFirstStep(t *testing.T) {
	req, err := http.NewRequest("PUT", "/api/v1/wizard/608cafe595eb9dc05379b7f4/back", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"session_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.WizardSession)
		arg.DeclarationType = "found"
		arg.StepIndex = 0
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "wizard_sessions").Return(conn)

	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.BackHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already at the first step")
}

func TestWizard_SubmitHandlerIdempotentOnResubmit(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/wizard/608cafe595eb9dc05379b7f4/submit", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"session_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.WizardSession)
		arg.DeclarationType = "lost"
		arg.Submitted = true
		arg.TrackingNumber = "OVPR-LOST-20240315-00427"
		arg.DeclarationID = "608cafe595eb9dc05379b7f5"
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "wizard_sessions").Return(conn)

	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.SubmitHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "OVPR-LOST-20240315-00427")
	assert.Contains(t, rr.Body.String(), "608cafe595eb9dc05379b7f5")
}

func TestWizard_SubmitHandlerMissingCaptcha(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/wizard/608cafe595eb9dc05379b7f4/submit", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"session_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.WizardSession)
		arg.DeclarationType = "lost"
		arg.StepIndex = 5
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "wizard_sessions").Return(conn)

	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.SubmitHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "captcha token required")
}

func TestWizard_SubmitHandlerTrackingNumberExhaustion(t *testing.T) {
	os.Unsetenv("CAPTCHA_SECRET")

	req, err := http.NewRequest("POST", "/api/v1/wizard/608cafe595eb9dc05379b7f4/submit", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"session_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	sessions := &mocks.CollectionHelper{}
	declarations := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.WizardSession)
		arg.DeclarationType = "lost"
		arg.StepIndex = 5
		arg.Draft.CaptchaToken = "tok-123"
	})
	sessions.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	// every regenerated number reads as already taken
	declarations.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "wizard_sessions").Return(sessions)
	db.On("Collection", "declarations").Return(declarations)

	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.SubmitHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to issue tracking number")
	declarations.AssertNumberOfCalls(t, "CountDocuments", 5)
}

func TestWizard_RemovePhotoHandlerPersistFailure(t *testing.T) {
	req, err := http.NewRequest("DELETE", "/api/v1/wizard/608cafe595eb9dc05379b7f4/photos?url=https://img.example/a", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"session_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.WizardSession)
		arg.DeclarationType = "lost"
		arg.Draft.Photos = []models.Photo{{URL: "https://img.example/a", PublicID: "a"}}
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)
	db.On("Collection", "wizard_sessions").Return(conn)

	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.RemovePhotoHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to persist wizard session")
}

func TestWizard_AbandonHandlerDeletesSession(t *testing.T) {
	req, err := http.NewRequest("DELETE", "/api/v1/wizard/608cafe595eb9dc05379b7f4", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"session_id": "608cafe595eb9dc05379b7f4"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.WizardSession)
		arg.DeclarationType = "lost"
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(nil)
	db.On("Collection", "wizard_sessions").Return(conn)

	wz := newWizardHandler(db)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(wz.AbandonHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"deleted": true`)
}

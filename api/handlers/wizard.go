package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Loicqra12/ovpr-api/config"
	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/declaration"
	"github.com/Loicqra12/ovpr-api/models"
	"github.com/Loicqra12/ovpr-api/wizard"
)

// sessionTTL is how long an untouched wizard session survives before the
// scheduler purges it and releases its uploaded photos.
const sessionTTL = 48 * time.Hour

// trackingAttempts bounds the regeneration loop when a fresh tracking number
// collides with an existing declaration.
const trackingAttempts = 5

// Wizard exposes the declaration wizard as server-driven session endpoints
type Wizard struct {
	SDB      databases.WizardSessionDatabase
	DDB      databases.DeclarationDatabase
	Captcha  *CaptchaVerifier
	Uploader *Uploader
}

type startWizardRequest struct {
	DeclarationType string `json:"declarationType"`
	OwnerID         string `json:"ownerID"`
}

type submitResponse struct {
	TrackingNumber string `json:"trackingNumber"`
	DeclarationID  string `json:"declarationID"`
}

// writeValidationError reports a failed step predicate without logging it as
// a server fault
func writeValidationError(w http.ResponseWriter, verr *wizard.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(verr)
}

// StartHandler opens a new wizard session for a declaration type
func (h Wizard) StartHandler(w http.ResponseWriter, r *http.Request) {
	var req startWizardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	s, err := wizard.Start(req.DeclarationType)
	if err != nil {
		config.ErrorStatus("unknown declaration type", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	stored := models.WizardSession{
		ID:              primitive.NewObjectID(),
		OwnerID:         req.OwnerID,
		DeclarationType: req.DeclarationType,
		Steps:           s.Flow.StepNames(),
		StepIndex:       0,
		Draft:           s.Draft,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       primitive.NewDateTimeFromTime(time.Now().Add(sessionTTL)),
	}

	if _, err := h.SDB.InsertOne(r.Context(), stored); err != nil {
		config.ErrorStatus("failed to create wizard session", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(stored)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// loadSession fetches the stored session for the request's session_id. A nil
// return means the response has already been written.
func (h Wizard) loadSession(w http.ResponseWriter, r *http.Request) *models.WizardSession {
	sessionID := mux.Vars(r)["session_id"]
	oid, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		config.ErrorStatus("invalid session id", http.StatusBadRequest, w, err)
		return nil
	}

	var stored models.WizardSession
	if err := h.SDB.FindOne(r.Context(), bson.M{"_id": oid}).Decode(&stored); err != nil {
		config.ErrorStatus("wizard session not found", http.StatusNotFound, w, err)
		return nil
	}
	return &stored
}

// persistSession writes the session's mutable fields back to the store
func (h Wizard) persistSession(ctx context.Context, stored *models.WizardSession, s wizard.Session) error {
	stored.StepIndex = s.StepIndex
	stored.Draft = s.Draft
	stored.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
	_, err := h.SDB.UpdateOne(ctx, bson.M{"_id": stored.ID}, bson.M{"$set": bson.M{
		"stepIndex": stored.StepIndex,
		"draft":     stored.Draft,
		"updatedAt": stored.UpdatedAt,
	}})
	return err
}

func (h Wizard) writeSession(w http.ResponseWriter, stored *models.WizardSession, status int) {
	b, err := json.Marshal(stored)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// SessionHandler returns the stored wizard session
func (h Wizard) SessionHandler(w http.ResponseWriter, r *http.Request) {
	stored := h.loadSession(w, r)
	if stored == nil {
		return
	}
	h.writeSession(w, stored, http.StatusOK)
}

// StepHandler merges submitted step data and advances to the next step
func (h Wizard) StepHandler(w http.ResponseWriter, r *http.Request) {
	stored := h.loadSession(w, r)
	if stored == nil {
		return
	}
	if stored.Submitted {
		config.ErrorStatus("wizard session already submitted", http.StatusConflict, w, nil)
		return
	}

	var data wizard.StepData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	s, err := wizard.Resume(*stored)
	if err != nil {
		config.ErrorStatus("corrupt wizard session", http.StatusInternalServerError, w, err)
		return
	}

	s = s.Apply(data)
	next, err := s.Next()
	if err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			// persist the applied data anyway so the declarant does not lose
			// fields from a half-valid step
			if perr := h.persistSession(r.Context(), stored, s); perr != nil {
				zap.S().Warnw("failed to persist wizard draft", "sessionID", stored.ID.Hex(), "error", perr)
			}
			writeValidationError(w, verr)
			return
		}
		config.ErrorStatus("failed to advance wizard", http.StatusInternalServerError, w, err)
		return
	}

	if err := h.persistSession(r.Context(), stored, next); err != nil {
		config.ErrorStatus("failed to persist wizard session", http.StatusInternalServerError, w, err)
		return
	}
	h.writeSession(w, stored, http.StatusOK)
}

// BackHandler returns the session to the previous step
func (h Wizard) BackHandler(w http.ResponseWriter, r *http.Request) {
	stored := h.loadSession(w, r)
	if stored == nil {
		return
	}
	if stored.Submitted {
		config.ErrorStatus("wizard session already submitted", http.StatusConflict, w, nil)
		return
	}

	s, err := wizard.Resume(*stored)
	if err != nil {
		config.ErrorStatus("corrupt wizard session", http.StatusInternalServerError, w, err)
		return
	}

	prev, err := s.Back()
	if err != nil {
		config.ErrorStatus("already at the first step", http.StatusConflict, w, err)
		return
	}

	if err := h.persistSession(r.Context(), stored, prev); err != nil {
		config.ErrorStatus("failed to persist wizard session", http.StatusInternalServerError, w, err)
		return
	}
	h.writeSession(w, stored, http.StatusOK)
}

// AddPhotoHandler registers an uploaded photo on the draft
func (h Wizard) AddPhotoHandler(w http.ResponseWriter, r *http.Request) {
	stored := h.loadSession(w, r)
	if stored == nil {
		return
	}
	if stored.Submitted {
		config.ErrorStatus("wizard session already submitted", http.StatusConflict, w, nil)
		return
	}

	var photo models.Photo
	if err := json.NewDecoder(r.Body).Decode(&photo); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if photo.URL == "" {
		config.ErrorStatus("photo url is required", http.StatusBadRequest, w, nil)
		return
	}

	s, err := wizard.Resume(*stored)
	if err != nil {
		config.ErrorStatus("corrupt wizard session", http.StatusInternalServerError, w, err)
		return
	}

	next, err := s.AddPhoto(photo)
	if err != nil {
		// the asset was already uploaded; release it so it does not orphan
		h.Uploader.Destroy(r.Context(), photo.PublicID)
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		config.ErrorStatus("failed to add photo", http.StatusInternalServerError, w, err)
		return
	}

	if err := h.persistSession(r.Context(), stored, next); err != nil {
		config.ErrorStatus("failed to persist wizard session", http.StatusInternalServerError, w, err)
		return
	}
	h.writeSession(w, stored, http.StatusOK)
}

// RemovePhotoHandler drops a photo from the draft and releases its asset
func (h Wizard) RemovePhotoHandler(w http.ResponseWriter, r *http.Request) {
	stored := h.loadSession(w, r)
	if stored == nil {
		return
	}
	if stored.Submitted {
		config.ErrorStatus("wizard session already submitted", http.StatusConflict, w, nil)
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		config.ErrorStatus("missing url parameter", http.StatusBadRequest, w, nil)
		return
	}

	s, err := wizard.Resume(*stored)
	if err != nil {
		config.ErrorStatus("corrupt wizard session", http.StatusInternalServerError, w, err)
		return
	}

	next, removed, ok := s.RemovePhoto(url)
	if !ok {
		config.ErrorStatus("photo not found on draft", http.StatusNotFound, w, nil)
		return
	}

	// drop the photo from the draft before releasing the asset, so a failed
	// write never leaves the stored draft pointing at a destroyed upload
	if err := h.persistSession(r.Context(), stored, next); err != nil {
		config.ErrorStatus("failed to persist wizard session", http.StatusInternalServerError, w, err)
		return
	}
	h.Uploader.Destroy(r.Context(), removed.PublicID)
	h.writeSession(w, stored, http.StatusOK)
}

// SubmitHandler finalizes the wizard: captcha check, tracking number
// issuance, declaration insert. A session that already submitted returns the
// original result so retries are idempotent.
func (h Wizard) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	stored := h.loadSession(w, r)
	if stored == nil {
		return
	}

	if stored.Submitted {
		b, _ := json.Marshal(submitResponse{TrackingNumber: stored.TrackingNumber, DeclarationID: stored.DeclarationID})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
		return
	}

	s, err := wizard.Resume(*stored)
	if err != nil {
		config.ErrorStatus("corrupt wizard session", http.StatusInternalServerError, w, err)
		return
	}

	if err := h.Captcha.Verify(r.Context(), s.Draft.CaptchaToken); err != nil {
		writeValidationError(w, &wizard.ValidationError{
			Step:    wizard.StepConfirmation,
			Field:   "captchaToken",
			Message: err.Error(),
		})
		return
	}

	// a session keeps the tracking number issued on its first submit attempt,
	// so a failed insert retried later does not register twice under two codes
	trackingNumber := stored.TrackingNumber
	if trackingNumber == "" {
		trackingNumber, err = h.issueTrackingNumber(r.Context(), stored.DeclarationType)
		if err != nil {
			config.ErrorStatus("failed to issue tracking number", http.StatusInternalServerError, w, err)
			return
		}
		stored.TrackingNumber = trackingNumber
		if _, err := h.SDB.UpdateOne(r.Context(), bson.M{"_id": stored.ID}, bson.M{"$set": bson.M{
			"trackingNumber": trackingNumber,
			"updatedAt":      primitive.NewDateTimeFromTime(time.Now()),
		}}); err != nil {
			config.ErrorStatus("failed to persist tracking number", http.StatusInternalServerError, w, err)
			return
		}
	}

	record, err := s.Assemble(stored.OwnerID, trackingNumber, time.Now())
	if err != nil {
		if errors.Is(err, wizard.ErrNotAtLastStep) {
			config.ErrorStatus("wizard is not on the confirmation step", http.StatusConflict, w, err)
			return
		}
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		config.ErrorStatus("failed to assemble declaration", http.StatusInternalServerError, w, err)
		return
	}
	record.ID = primitive.NewObjectID()

	if _, err := h.DDB.InsertOne(r.Context(), record); err != nil {
		// tracking number stays on the session for the retry
		config.ErrorStatus("failed to save declaration", http.StatusInternalServerError, w, err)
		return
	}

	stored.Submitted = true
	stored.DeclarationID = record.ID.Hex()
	if _, err := h.SDB.UpdateOne(r.Context(), bson.M{"_id": stored.ID}, bson.M{"$set": bson.M{
		"submitted":     true,
		"declarationID": stored.DeclarationID,
		"updatedAt":     primitive.NewDateTimeFromTime(time.Now()),
	}}); err != nil {
		zap.S().Warnw("failed to mark wizard session submitted", "sessionID", stored.ID.Hex(), "error", err)
	}

	notifyStatusChange(stored.OwnerID, trackingNumber, declaration.StatusActive, stored.OwnerID)
	zap.S().Infow("declaration registered",
		"trackingNumber", trackingNumber,
		"declarationType", record.DeclarationType,
	)

	b, err := json.Marshal(submitResponse{TrackingNumber: trackingNumber, DeclarationID: stored.DeclarationID})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// issueTrackingNumber generates a tracking number that is not already taken,
// regenerating on collision a bounded number of times.
func (h Wizard) issueTrackingNumber(ctx context.Context, declarationType string) (string, error) {
	var trackingNumber string
	for i := 0; i < trackingAttempts; i++ {
		trackingNumber = declaration.GenerateTrackingNumber(declarationType, time.Now())
		count, err := h.DDB.CountDocuments(ctx, bson.M{"trackingNumber": trackingNumber})
		if err != nil {
			return "", err
		}
		if count == 0 {
			return trackingNumber, nil
		}
		zap.S().Warnw("tracking number collision, regenerating", "trackingNumber", trackingNumber)
	}
	return "", fmt.Errorf("no unique tracking number after %d attempts", trackingAttempts)
}

// AbandonHandler deletes an in-progress session and releases its photos
func (h Wizard) AbandonHandler(w http.ResponseWriter, r *http.Request) {
	stored := h.loadSession(w, r)
	if stored == nil {
		return
	}
	if stored.Submitted {
		config.ErrorStatus("wizard session already submitted", http.StatusConflict, w, nil)
		return
	}

	for _, photo := range stored.Draft.Photos {
		h.Uploader.Destroy(r.Context(), photo.PublicID)
	}

	if err := h.SDB.DeleteOne(r.Context(), bson.M{"_id": stored.ID}); err != nil {
		config.ErrorStatus("failed to delete wizard session", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}

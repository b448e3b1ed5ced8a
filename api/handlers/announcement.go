package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Loicqra12/ovpr-api/config"
	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/models"
)

// Announcement struct for handling announcement operations
type Announcement struct {
	ADB databases.AnnouncementDatabase
}

// AnnouncementHandler returns all active announcements, newest first
func (a Announcement) AnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	sort := bson.D{{Key: "createdAt", Value: -1}}

	var dbResp []models.Announcement
	err := a.ADB.Find(context.Background(), bson.M{"isActive": true}, &options.FindOptions{Sort: sort}).Decode(&dbResp)
	if err != nil {
		config.ErrorStatus("failed to get announcements", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Announcement{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateAnnouncementHandler creates an announcement from the admin console
func (a Announcement) CreateAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	var announcement models.Announcement
	if err := json.NewDecoder(r.Body).Decode(&announcement); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if announcement.Title == "" || announcement.Content == "" {
		config.ErrorStatus("title and content are required", http.StatusBadRequest, w, fmt.Errorf("missing title or content"))
		return
	}
	if announcement.Priority == "" {
		announcement.Priority = "low"
	}

	announcement.ID = primitive.NewObjectID()
	announcement.IsActive = true
	announcement.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	announcement.UpdatedAt = announcement.CreatedAt

	if _, err := a.ADB.InsertOne(r.Context(), announcement); err != nil {
		config.ErrorStatus("failed to insert announcement", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(announcement)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// DeleteAnnouncementHandler removes an announcement
func (a Announcement) DeleteAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	announcementID := mux.Vars(r)["announcement_id"]

	aID, err := primitive.ObjectIDFromHex(announcementID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := a.ADB.DeleteOne(r.Context(), bson.M{"_id": aID}); err != nil {
		config.ErrorStatus("failed to delete announcement", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}

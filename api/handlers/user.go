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
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Loicqra12/ovpr-api/config"
	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/models"
)

// User exported for testing purposes
type User struct {
	DB databases.UserDatabase
}

type addNotificationRequest struct {
	UserID         string `json:"userID"`
	Type           string `json:"type"`
	Message        string `json:"message"`
	TrackingNumber string `json:"trackingNumber"`
}

// UserHandler returns a user given a userID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	zap.S().Debugf("user_id: %v", userID)

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var dbResp models.User
	err = u.DB.FindOne(context.Background(), bson.M{"_id": uID}).Decode(&dbResp)
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	// never hand the password hash back out
	dbResp.Details.Password = ""

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UserCreateHandler creates a user
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var user models.UserDetails
	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if user.Email == "" || user.Password == "" {
		config.ErrorStatus("email and password are required", http.StatusBadRequest, w, fmt.Errorf("missing email or password"))
		return
	}

	// check if the user already exists
	count, err := u.DB.CountDocuments(context.Background(), bson.M{"user.email": user.Email})
	if err != nil {
		config.ErrorStatus("failed to check existing email", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("email already exists", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	// hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}
	user.Password = string(hashedPassword)

	if user.Language == "" {
		user.Language = "fr"
	}
	user.Notifications = []models.Notification{}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	// insert the user
	_, err = u.DB.InsertOne(context.Background(), user)
	if err != nil {
		config.ErrorStatus("failed to insert user", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// AddNotificationHandler appends an entry to a user's notification feed and
// pushes it over the websocket when the user is connected
func (u User) AddNotificationHandler(w http.ResponseWriter, r *http.Request) {
	var req addNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" || req.Message == "" {
		config.ErrorStatus("userID and message are required", http.StatusBadRequest, w, fmt.Errorf("missing userID or message"))
		return
	}

	uID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	notification := models.Notification{
		ID:             primitive.NewObjectID().Hex(),
		Type:           req.Type,
		Message:        req.Message,
		TrackingNumber: req.TrackingNumber,
		Seen:           false,
		CreatedAt:      time.Now(),
	}

	res, err := u.DB.UpdateOne(r.Context(), bson.M{"_id": uID}, bson.M{
		"$push": bson.M{"user.notifications": notification},
		"$set":  bson.M{"user.updatedAt": time.Now()},
	})
	if err != nil {
		config.ErrorStatus("failed to add notification", http.StatusInternalServerError, w, err)
		return
	}
	if res != nil && res.MatchedCount == 0 {
		config.ErrorStatus("user not found", http.StatusNotFound, w, fmt.Errorf("no user matched"))
		return
	}

	sendNotificationToUser(req.UserID, notification)

	b, err := json.Marshal(notification)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// GetUserNotificationsHandler returns a user's notification feed
func (u User) GetUserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var dbResp models.User
	err = u.DB.FindOne(context.Background(), bson.M{"_id": uID}).Decode(&dbResp)
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	notifications := dbResp.Details.Notifications
	if len(notifications) == 0 {
		notifications = []models.Notification{}
	}

	b, err := json.Marshal(notifications)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

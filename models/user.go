package models

import "time"

// User holds the structure for the user collection in mongo
type User struct {
	ID      string      `json:"_id" bson:"_id"`
	Details UserDetails `json:"user" bson:"user"`
	Version int32       `json:"__v" bson:"__v"`
}

// UserDetails holds the structure for the inner user structure as defined in the user collection in mongo
type UserDetails struct {
	Email         string         `json:"email" bson:"email"`
	Name          string         `json:"name" bson:"name"`
	Username      string         `json:"username" bson:"username"`
	Password      string         `json:"password" bson:"password"`
	Phone         string         `json:"phone" bson:"phone"`
	Language      string         `json:"language" bson:"language"`
	Notifications []Notification `json:"notifications" bson:"notifications"`
	CreatedAt     interface{}    `json:"createdAt" bson:"createdAt"`
	UpdatedAt     interface{}    `json:"updatedAt" bson:"updatedAt"`
}

// Notification is one entry of a user's in-app notification feed
type Notification struct {
	ID             string    `json:"_id" bson:"_id"`
	Type           string    `json:"type" bson:"type"`
	Message        string    `json:"message" bson:"message"`
	TrackingNumber string    `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	Seen           bool      `json:"seen" bson:"seen"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

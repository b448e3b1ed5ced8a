package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Announcement holds the structure for the announcement collection in mongo.
// Announcements are authored from the admin console and shown on the
// public dashboards.
type Announcement struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	Priority  string             `json:"priority" bson:"priority"` // 'low', 'medium', 'high', 'urgent'
	IsActive  bool               `json:"isActive" bson:"isActive"`
	Creator   string             `json:"creator" bson:"creator"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Declaration holds the structure for the declaration collection in mongo.
// One document is a single lost/found/stolen item report.
type Declaration struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TrackingNumber  string             `json:"trackingNumber" bson:"trackingNumber"`
	DeclarationType string             `json:"declarationType" bson:"declarationType"`
	Category        string             `json:"category" bson:"category"`
	Subcategory     string             `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	OtherCategory   string             `json:"otherCategory,omitempty" bson:"otherCategory,omitempty"`
	Identifier      *Identifier        `json:"identifier,omitempty" bson:"identifier,omitempty"`
	Description     string             `json:"description" bson:"description"`
	Location        *Location          `json:"location,omitempty" bson:"location,omitempty"`
	OccurredAt      *time.Time         `json:"occurredAt,omitempty" bson:"occurredAt,omitempty"`
	OccurredApprox  bool               `json:"occurredApprox" bson:"occurredApprox"`
	Photos          []Photo            `json:"photos" bson:"photos"`
	Contact         Contact            `json:"contact" bson:"contact"`
	PoliceReport    *PoliceReport      `json:"policeReport,omitempty" bson:"policeReport,omitempty"`
	Reward          *Reward            `json:"reward,omitempty" bson:"reward,omitempty"`
	Status          string             `json:"status" bson:"status"`
	StatusHistory   []StatusEntry      `json:"statusHistory" bson:"statusHistory"`
	AcceptedTerms   bool               `json:"acceptedTerms" bson:"acceptedTerms"`
	OwnerID         string             `json:"ownerID" bson:"ownerID"`
	CreatedAt       primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt       primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Identifier is a category-specific unique code for an item (VIN, IMEI, serial)
type Identifier struct {
	Type  string `json:"type" bson:"type"`
	Value string `json:"value" bson:"value"`
}

// Location is where the item was lost or found
type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Address   string  `json:"address,omitempty" bson:"address,omitempty"`
}

// Photo references one uploaded image in object storage. PublicID is the
// storage handle used to release the asset when the photo is removed.
type Photo struct {
	URL      string `json:"url" bson:"url"`
	PublicID string `json:"publicID" bson:"publicID"`
}

// Contact holds the reachable channels for a declaration's owner
type Contact struct {
	Email            string `json:"email,omitempty" bson:"email,omitempty"`
	Phone            string `json:"phone,omitempty" bson:"phone,omitempty"`
	HidePhone        bool   `json:"hidePhone" bson:"hidePhone"`
	AlternateContact string `json:"alternateContact,omitempty" bson:"alternateContact,omitempty"`
}

// PoliceReport references a filed police report
type PoliceReport struct {
	ReportNumber string     `json:"reportNumber" bson:"reportNumber"`
	Station      string     `json:"station,omitempty" bson:"station,omitempty"`
	Date         *time.Time `json:"date,omitempty" bson:"date,omitempty"`
}

// Reward is the optional reward offered on lost-item declarations
type Reward struct {
	Amount      float64 `json:"amount" bson:"amount"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
}

// StatusEntry is one line of a declaration's append-only status history
type StatusEntry struct {
	Status    string             `json:"status" bson:"status"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
	Actor     string             `json:"actor" bson:"actor"`
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
}

// DeclarationDraft is the working copy of a declaration while its wizard
// session is in progress. Same shape as Declaration minus everything that is
// only assigned at creation (tracking number, status, history).
type DeclarationDraft struct {
	Category       string        `json:"category,omitempty" bson:"category,omitempty"`
	Subcategory    string        `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	OtherCategory  string        `json:"otherCategory,omitempty" bson:"otherCategory,omitempty"`
	Identifier     *Identifier   `json:"identifier,omitempty" bson:"identifier,omitempty"`
	Description    string        `json:"description,omitempty" bson:"description,omitempty"`
	Location       *Location     `json:"location,omitempty" bson:"location,omitempty"`
	OccurredAt     *time.Time    `json:"occurredAt,omitempty" bson:"occurredAt,omitempty"`
	OccurredApprox bool          `json:"occurredApprox" bson:"occurredApprox"`
	Photos         []Photo       `json:"photos" bson:"photos"`
	Contact        Contact       `json:"contact" bson:"contact"`
	PoliceReport   *PoliceReport `json:"policeReport,omitempty" bson:"policeReport,omitempty"`
	Reward         *Reward       `json:"reward,omitempty" bson:"reward,omitempty"`
	AcceptedTerms  bool          `json:"acceptedTerms" bson:"acceptedTerms"`
	CaptchaToken   string        `json:"captchaToken,omitempty" bson:"captchaToken,omitempty"`
}

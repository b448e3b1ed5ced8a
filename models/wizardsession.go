package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// WizardSession holds the structure for the wizard_sessions collection in
// mongo. One document is a single in-progress declaration wizard; the draft
// inside it is only ever replaced wholesale by a validated transition.
type WizardSession struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID         string             `json:"ownerID" bson:"ownerID"`
	DeclarationType string             `json:"declarationType" bson:"declarationType"`
	Steps           []string           `json:"steps" bson:"steps"`
	StepIndex       int                `json:"stepIndex" bson:"stepIndex"`
	Draft           DeclarationDraft   `json:"draft" bson:"draft"`
	// TrackingNumber is assigned on the first submit attempt and reused on
	// retries, so a declaration is never issued two registration codes.
	TrackingNumber string             `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	Submitted      bool               `json:"submitted" bson:"submitted"`
	DeclarationID  string             `json:"declarationID,omitempty" bson:"declarationID,omitempty"`
	CreatedAt      primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
	ExpiresAt      primitive.DateTime `json:"expiresAt" bson:"expiresAt"`
}

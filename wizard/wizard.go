package wizard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Loicqra12/ovpr-api/declaration"
	"github.com/Loicqra12/ovpr-api/models"
)

// Session is the working state of one declaration wizard
type Session struct {
	Flow      Flow
	StepIndex int
	Draft     models.DeclarationDraft
}

// StepData carries the fields a client submits for one step. Pointers
// distinguish "not sent" from zero values, so a step submission only touches
// the fields it names.
type StepData struct {
	Category       *string              `json:"category,omitempty"`
	Subcategory    *string              `json:"subcategory,omitempty"`
	OtherCategory  *string              `json:"otherCategory,omitempty"`
	Identifier     *models.Identifier   `json:"identifier,omitempty"`
	Description    *string              `json:"description,omitempty"`
	Location       *models.Location     `json:"location,omitempty"`
	OccurredAt     *time.Time           `json:"occurredAt,omitempty"`
	OccurredApprox *bool                `json:"occurredApprox,omitempty"`
	Contact        *models.Contact      `json:"contact,omitempty"`
	PoliceReport   *models.PoliceReport `json:"policeReport,omitempty"`
	Reward         *models.Reward       `json:"reward,omitempty"`
	AcceptedTerms  *bool                `json:"acceptedTerms,omitempty"`
	CaptchaToken   *string              `json:"captchaToken,omitempty"`
}

// ValidationError reports the specific field that failed a step predicate
type ValidationError struct {
	Step    StepID `json:"step"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Step, e.Field, e.Message)
}

var (
	// ErrAtFirstStep rejects Back from the first step
	ErrAtFirstStep = errors.New("already at the first step")
	// ErrNotAtLastStep rejects Submit anywhere but the confirmation step
	ErrNotAtLastStep = errors.New("submit is only available from the confirmation step")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Start opens a new session for the given declaration type
func Start(declarationType string) (Session, error) {
	flow, err := FlowFor(declarationType)
	if err != nil {
		return Session{}, err
	}
	return Session{Flow: flow}, nil
}

// Resume rebuilds a session from its stored form
func Resume(stored models.WizardSession) (Session, error) {
	flow, err := FlowFor(stored.DeclarationType)
	if err != nil {
		return Session{}, err
	}
	idx := stored.StepIndex
	if idx < 0 {
		idx = 0
	}
	if idx >= len(flow.Steps) {
		idx = len(flow.Steps) - 1
	}
	return Session{Flow: flow, StepIndex: idx, Draft: stored.Draft}, nil
}

// Step returns the active step
func (s Session) Step() StepID {
	return s.Flow.Steps[s.StepIndex]
}

// AtLastStep reports whether the session sits on the confirmation step
func (s Session) AtLastStep() bool {
	return s.StepIndex == len(s.Flow.Steps)-1
}

// Apply merges submitted step data into the draft and returns the new
// session. Only fields present in data are touched.
func (s Session) Apply(data StepData) Session {
	d := s.Draft
	if data.Category != nil {
		d.Category = *data.Category
	}
	if data.Subcategory != nil {
		d.Subcategory = *data.Subcategory
	}
	if data.OtherCategory != nil {
		d.OtherCategory = *data.OtherCategory
	}
	if data.Identifier != nil {
		ident := *data.Identifier
		d.Identifier = &ident
	}
	if data.Description != nil {
		d.Description = *data.Description
	}
	if data.Location != nil {
		loc := *data.Location
		d.Location = &loc
	}
	if data.OccurredAt != nil {
		at := *data.OccurredAt
		d.OccurredAt = &at
	}
	if data.OccurredApprox != nil {
		d.OccurredApprox = *data.OccurredApprox
	}
	if data.Contact != nil {
		d.Contact = *data.Contact
	}
	if data.PoliceReport != nil {
		pr := *data.PoliceReport
		d.PoliceReport = &pr
	}
	if data.Reward != nil && s.Flow.RewardAllowed {
		rw := *data.Reward
		d.Reward = &rw
	}
	if data.AcceptedTerms != nil {
		d.AcceptedTerms = *data.AcceptedTerms
	}
	if data.CaptchaToken != nil {
		d.CaptchaToken = *data.CaptchaToken
	}
	s.Draft = d
	return s
}

// Next advances to the following step. It is permitted only when the active
// step's required-field predicate holds; otherwise the *ValidationError names
// the offending field and the session is returned unchanged.
func (s Session) Next() (Session, error) {
	if err := s.validateStep(s.Step()); err != nil {
		return s, err
	}
	if s.AtLastStep() {
		return s, &ValidationError{Step: s.Step(), Field: "step", Message: "already at the last step"}
	}
	s.StepIndex++
	return s, nil
}

// Back returns to the previous step. Always permitted except from the first.
func (s Session) Back() (Session, error) {
	if s.StepIndex == 0 {
		return s, ErrAtFirstStep
	}
	s.StepIndex--
	return s, nil
}

// AddPhoto registers an uploaded photo on the draft, enforcing the flow's
// upper bound. The caller owns releasing the stored object if the add fails.
func (s Session) AddPhoto(p models.Photo) (Session, error) {
	if len(s.Draft.Photos) >= s.Flow.MaxPhotos {
		return s, &ValidationError{
			Step:    s.Step(),
			Field:   "photos",
			Message: fmt.Sprintf("at most %d photos are allowed", s.Flow.MaxPhotos),
		}
	}
	photos := make([]models.Photo, len(s.Draft.Photos), len(s.Draft.Photos)+1)
	copy(photos, s.Draft.Photos)
	s.Draft.Photos = append(photos, p)
	return s, nil
}

// RemovePhoto drops the photo with the given URL from the draft and returns
// it so the caller can release the stored object.
func (s Session) RemovePhoto(url string) (Session, models.Photo, bool) {
	for i, p := range s.Draft.Photos {
		if p.URL == url {
			photos := make([]models.Photo, 0, len(s.Draft.Photos)-1)
			photos = append(photos, s.Draft.Photos[:i]...)
			photos = append(photos, s.Draft.Photos[i+1:]...)
			s.Draft.Photos = photos
			return s, p, true
		}
	}
	return s, models.Photo{}, false
}

// Validate runs every step predicate against the draft, in flow order.
// Submit uses it to guarantee nothing was skipped.
func (s Session) Validate() error {
	for _, step := range s.Flow.Steps {
		if err := s.validateStep(step); err != nil {
			return err
		}
	}
	return nil
}

// Assemble builds the final declaration record from a fully validated draft.
// The record starts in the active state with a seeded history entry; the
// caller supplies the tracking number so retries reuse the one already
// issued.
func (s Session) Assemble(ownerID, trackingNumber string, now time.Time) (models.Declaration, error) {
	if !s.AtLastStep() {
		return models.Declaration{}, ErrNotAtLastStep
	}
	if err := s.Validate(); err != nil {
		return models.Declaration{}, err
	}

	d := s.Draft
	photos := d.Photos
	if photos == nil {
		photos = []models.Photo{}
	}
	created := primitive.NewDateTimeFromTime(now)
	return models.Declaration{
		TrackingNumber:  trackingNumber,
		DeclarationType: s.Flow.DeclarationType,
		Category:        d.Category,
		Subcategory:     d.Subcategory,
		OtherCategory:   d.OtherCategory,
		Identifier:      d.Identifier,
		Description:     strings.TrimSpace(d.Description),
		Location:        d.Location,
		OccurredAt:      d.OccurredAt,
		OccurredApprox:  d.OccurredApprox,
		Photos:          photos,
		Contact:         d.Contact,
		PoliceReport:    d.PoliceReport,
		Reward:          d.Reward,
		Status:          declaration.StatusActive,
		StatusHistory: []models.StatusEntry{
			{Status: declaration.StatusActive, Timestamp: created, Actor: ownerID, Comment: "declaration created"},
		},
		AcceptedTerms: d.AcceptedTerms,
		OwnerID:       ownerID,
		CreatedAt:     created,
		UpdatedAt:     created,
	}, nil
}

func (s Session) validateStep(step StepID) error {
	d := s.Draft
	switch step {
	case StepCategory:
		if d.Category == "" {
			return &ValidationError{Step: step, Field: "category", Message: "category is required"}
		}
		if !declaration.ValidCategory(d.Category) {
			return &ValidationError{Step: step, Field: "category", Message: fmt.Sprintf("unknown category %q", d.Category)}
		}
		if d.Category == declaration.CategoryOther && strings.TrimSpace(d.OtherCategory) == "" {
			return &ValidationError{Step: step, Field: "otherCategory", Message: "describe the category when selecting other"}
		}
		if !declaration.ValidSubcategory(d.Category, d.Subcategory) {
			return &ValidationError{Step: step, Field: "subcategory", Message: fmt.Sprintf("unknown subcategory %q for %q", d.Subcategory, d.Category)}
		}

	case StepIdentification:
		required := declaration.IdentifierRequired(d.Category)
		if d.Identifier == nil {
			if required {
				return &ValidationError{Step: step, Field: "identifier", Message: fmt.Sprintf("category %q requires an identifier", d.Category)}
			}
			return nil
		}
		if d.Identifier.Type == "" || d.Identifier.Value == "" {
			return &ValidationError{Step: step, Field: "identifier", Message: "identifier type and value are required"}
		}
		if err := declaration.ValidateIdentifier(d.Category, d.Identifier.Type, d.Identifier.Value); err != nil {
			return &ValidationError{Step: step, Field: "identifier", Message: err.Error()}
		}

	case StepDescription:
		if strings.TrimSpace(d.Description) == "" {
			return &ValidationError{Step: step, Field: "description", Message: "description is required"}
		}

	case StepLocation:
		if d.Location == nil {
			if s.Flow.LocationRequired {
				return &ValidationError{Step: step, Field: "location", Message: "select a location on the map or share your position"}
			}
			return nil
		}
		if d.Location.Latitude < -90 || d.Location.Latitude > 90 ||
			d.Location.Longitude < -180 || d.Location.Longitude > 180 {
			return &ValidationError{Step: step, Field: "location", Message: "coordinates are out of range"}
		}

	case StepPolice:
		if d.PoliceReport == nil || strings.TrimSpace(d.PoliceReport.ReportNumber) == "" {
			return &ValidationError{Step: step, Field: "policeReport", Message: "a police report number is required for stolen items"}
		}

	case StepContact:
		if d.Contact.Email == "" && d.Contact.Phone == "" {
			return &ValidationError{Step: step, Field: "contact", Message: "provide an email address or a phone number"}
		}
		if d.Contact.Email != "" && !emailPattern.MatchString(d.Contact.Email) {
			return &ValidationError{Step: step, Field: "email", Message: "email address is not valid"}
		}
		if d.Contact.Phone != "" && !validPhone(d.Contact.Phone) {
			return &ValidationError{Step: step, Field: "phone", Message: "phone number must be 8 to 15 digits"}
		}

	case StepConfirmation:
		if !d.AcceptedTerms {
			return &ValidationError{Step: step, Field: "acceptedTerms", Message: "you must accept the terms before submitting"}
		}
		if strings.TrimSpace(d.CaptchaToken) == "" {
			return &ValidationError{Step: step, Field: "captchaToken", Message: "complete the verification challenge"}
		}
		if len(d.Photos) < s.Flow.MinPhotos {
			return &ValidationError{Step: step, Field: "photos", Message: fmt.Sprintf("at least %d photo(s) required", s.Flow.MinPhotos)}
		}
		if len(d.Photos) > s.Flow.MaxPhotos {
			return &ValidationError{Step: step, Field: "photos", Message: fmt.Sprintf("at most %d photos are allowed", s.Flow.MaxPhotos)}
		}
	}
	return nil
}

// validPhone applies the soft phone check: digits only after stripping
// spaces, dashes and a leading +, between 8 and 15 digits.
func validPhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(phone)
	cleaned = strings.TrimPrefix(cleaned, "+")
	if len(cleaned) < 8 || len(cleaned) > 15 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

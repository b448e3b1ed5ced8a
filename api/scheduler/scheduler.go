package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/declaration"
	"github.com/Loicqra12/ovpr-api/models"
	templates "github.com/Loicqra12/ovpr-api/templates/html"
)

// staleAfter is how long a lost or stolen declaration can sit untouched
// before its owner gets a reminder to update or resolve it.
const staleAfter = 30 * 24 * time.Hour

// Scheduler handles periodic background jobs for the declaration platform
type Scheduler struct {
	cron *cron.Cron
	SDB  databases.WizardSessionDatabase
	DDB  databases.DeclarationDatabase
	UDB  databases.UserDatabase
	cld  *cloudinary.Cloudinary
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	sDB databases.WizardSessionDatabase,
	dDB databases.DeclarationDatabase,
	uDB databases.UserDatabase,
) *Scheduler {
	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		zap.S().Warnw("cloudinary not configured, expired session photos will not be released", "error", err)
		cld = nil
	}

	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		SDB:  sDB,
		DDB:  dDB,
		UDB:  uDB,
		cld:  cld,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Purge abandoned wizard sessions hourly
	_, err := s.cron.AddFunc("0 * * * *", s.purgeExpiredSessions)
	if err != nil {
		zap.S().Errorw("failed to register session purge job", "error", err)
	}

	// Remind owners of stale lost/stolen declarations daily at 3 AM UTC
	_, err = s.cron.AddFunc("0 3 * * *", s.remindStaleDeclarations)
	if err != nil {
		zap.S().Errorw("failed to register stale declaration job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Declaration scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Declaration scheduler stopped")
}

// purgeExpiredSessions deletes wizard sessions past their expiry and releases
// the photos their drafts uploaded
func (s *Scheduler) purgeExpiredSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())

	var expired []models.WizardSession
	err := s.SDB.Find(ctx, bson.M{
		"submitted": false,
		"expiresAt": bson.M{"$lt": now},
	}).Decode(&expired)
	if err != nil {
		zap.S().Errorw("failed to find expired wizard sessions", "error", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	zap.S().Infow("Purging expired wizard sessions", "count", len(expired))

	for _, session := range expired {
		for _, photo := range session.Draft.Photos {
			s.destroyAsset(ctx, photo.PublicID)
		}
		if err := s.SDB.DeleteOne(ctx, bson.M{"_id": session.ID}); err != nil {
			zap.S().Errorw("failed to delete expired wizard session", "sessionID", session.ID.Hex(), "error", err)
		}
	}
}

// remindStaleDeclarations emails owners whose lost or stolen declarations have
// not moved in a while
func (s *Scheduler) remindStaleDeclarations() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-staleAfter))

	var stale []models.Declaration
	err := s.DDB.Find(ctx, bson.M{
		"status":    bson.M{"$in": []string{declaration.StatusLost, declaration.StatusStolen}},
		"updatedAt": bson.M{"$lt": cutoff},
	}).Decode(&stale)
	if err != nil {
		zap.S().Errorw("failed to find stale declarations", "error", err)
		return
	}

	zap.S().Infow("Running stale declaration reminder job", "count", len(stale))

	for _, dec := range stale {
		s.remindOwner(ctx, dec)
	}
}

func (s *Scheduler) remindOwner(ctx context.Context, dec models.Declaration) {
	toEmail := dec.Contact.Email
	toName := ""
	if toEmail == "" {
		oid, err := primitive.ObjectIDFromHex(dec.OwnerID)
		if err != nil {
			return
		}
		var owner models.User
		if err := s.UDB.FindOne(ctx, bson.M{"_id": oid}).Decode(&owner); err != nil {
			zap.S().Warnw("failed to look up owner for reminder", "ownerID", dec.OwnerID, "error", err)
			return
		}
		toEmail = owner.Details.Email
		toName = owner.Details.Name
	}
	if toEmail == "" {
		return
	}

	subject := fmt.Sprintf("Any news about %s?", dec.TrackingNumber)
	plainText := fmt.Sprintf(
		"Your declaration %s has been marked %s for a while.\n\nIf the item was recovered, please mark the declaration resolved. Keeping the status current helps others searching the registry.",
		dec.TrackingNumber, dec.Status)
	htmlContent := templates.RenderGenericEmail(subject, plainText)

	if err := s.sendEmail(toEmail, toName, subject, htmlContent, plainText); err != nil {
		zap.S().Errorw("failed to send reminder email", "trackingNumber", dec.TrackingNumber, "error", err)
	}
}

func (s *Scheduler) destroyAsset(ctx context.Context, publicID string) {
	if s.cld == nil || publicID == "" {
		return
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		zap.S().Warnw("failed to destroy cloudinary asset", "publicID", publicID, "error", err)
	}
}

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("OVPR", "no-reply@ovpr.ci")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Loicqra12/ovpr-api/api"
	"github.com/Loicqra12/ovpr-api/config"
	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/declaration"
	"github.com/Loicqra12/ovpr-api/models"
	templates "github.com/Loicqra12/ovpr-api/templates/html"
)

var (
	// Page denotes the starting Page for pagination results
	Page = 0
)

// Declaration exported for testing purposes
type Declaration struct {
	DB  databases.DeclarationDatabase
	UDB databases.UserDatabase
}

type updateStatusRequest struct {
	Status       string               `json:"status"`
	Actor        string               `json:"actor"`
	Comment      string               `json:"comment"`
	PoliceReport *models.PoliceReport `json:"policeReport"`
}

// DeclarationHandler returns declarations, paginated and optionally filtered
// by type, category and status
func (d Declaration) DeclarationHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
	}
	limit64 := int64(Limit)
	Page = getPage(Page, r)
	skip64 := int64(Page * Limit)

	filter := bson.M{}
	if declarationType := r.URL.Query().Get("type"); declarationType != "" {
		filter["declarationType"] = declarationType
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var dbResp []models.Declaration
	err = d.DB.Find(ctx, filter, &options.FindOptions{Limit: &limit64, Skip: &skip64}).Decode(&dbResp)
	if err != nil {
		config.ErrorStatus("failed to get declarations", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements inside models.Declaration exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Declaration{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeclarationByIDHandler returns a declaration by ID
func (d Declaration) DeclarationByIDHandler(w http.ResponseWriter, r *http.Request) {
	declarationID := mux.Vars(r)["declaration_id"]

	zap.S().Debugf("declaration_id: %v", declarationID)

	dID, err := primitive.ObjectIDFromHex(declarationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var dbResp models.Declaration
	err = d.DB.FindOne(context.Background(), bson.M{"_id": dID}).Decode(&dbResp)
	if err != nil {
		config.ErrorStatus("failed to get declaration by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeclarationByTrackingNumberHandler returns a declaration by its public
// tracking number
func (d Declaration) DeclarationByTrackingNumberHandler(w http.ResponseWriter, r *http.Request) {
	trackingNumber := mux.Vars(r)["tracking_number"]

	var dbResp models.Declaration
	err := d.DB.FindOne(context.Background(), bson.M{"trackingNumber": trackingNumber}).Decode(&dbResp)
	if err != nil {
		config.ErrorStatus("failed to get declaration by tracking number", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeclarationsByUserIDHandler returns all declarations owned by the given user
func (d Declaration) DeclarationsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v", Limit|10))
	}
	limit64 := int64(Limit)
	Page = getPage(Page, r)
	skip64 := int64(Page * Limit)

	zap.S().Debugf("user_id: '%v'", userID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var dbResp []models.Declaration
	err = d.DB.Find(ctx, bson.M{"ownerID": userID}, &options.FindOptions{Limit: &limit64, Skip: &skip64}).Decode(&dbResp)
	if err != nil {
		config.ErrorStatus("failed to get declarations by user id", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Declaration{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateStatusHandler moves a declaration through its lifecycle. The update is
// keyed on the status the caller saw, so two concurrent transitions cannot
// both land.
func (d Declaration) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	declarationID := mux.Vars(r)["declaration_id"]

	dID, err := primitive.ObjectIDFromHex(declarationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	var current models.Declaration
	err = d.DB.FindOne(r.Context(), bson.M{"_id": dID}).Decode(&current)
	if err != nil {
		config.ErrorStatus("failed to get declaration by ID", http.StatusNotFound, w, err)
		return
	}

	entry, err := declaration.Transition(&current, req.Status, req.Actor, req.Comment, req.PoliceReport, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, declaration.ErrUnknownStatus):
			config.ErrorStatus("unknown status", http.StatusBadRequest, w, err)
		case errors.Is(err, declaration.ErrMissingPoliceReport):
			config.ErrorStatus("a police report is required to mark a declaration stolen", http.StatusUnprocessableEntity, w, err)
		case errors.Is(err, declaration.ErrResolvedFinal):
			config.ErrorStatus("resolved declarations cannot change status", http.StatusConflict, w, err)
		default:
			config.ErrorStatus("failed to update status", http.StatusInternalServerError, w, err)
		}
		return
	}

	set := bson.M{
		"status":    req.Status,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}
	if req.PoliceReport != nil && req.PoliceReport.ReportNumber != "" {
		set["policeReport"] = req.PoliceReport
	}

	after := options.After
	var updated models.Declaration
	err = d.DB.FindOneAndUpdate(r.Context(),
		bson.M{"_id": dID, "status": current.Status},
		bson.M{
			"$set":  set,
			"$push": bson.M{"statusHistory": entry},
		},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&updated)
	if err != nil {
		// the status moved between our read and our update
		config.ErrorStatus("declaration status changed concurrently, retry", http.StatusConflict, w, err)
		return
	}

	notifyStatusChange(updated.OwnerID, updated.TrackingNumber, req.Status, req.Actor)
	if req.Actor != updated.OwnerID {
		go d.sendStatusChangeEmail(updated, req.Status)
	}

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// sendStatusChangeEmail notifies a declaration's owner by email that someone
// else moved their declaration
func (d Declaration) sendStatusChangeEmail(dec models.Declaration, newStatus string) {
	toEmail := dec.Contact.Email
	if toEmail == "" {
		var owner models.User
		oid, err := primitive.ObjectIDFromHex(dec.OwnerID)
		if err != nil {
			return
		}
		if err := d.UDB.FindOne(context.Background(), bson.M{"_id": oid}).Decode(&owner); err != nil {
			zap.S().Warnw("failed to look up declaration owner for email", "ownerID", dec.OwnerID, "error", err)
			return
		}
		toEmail = owner.Details.Email
	}
	if toEmail == "" {
		return
	}

	subject := fmt.Sprintf("Your declaration %s is now %s", dec.TrackingNumber, newStatus)
	plainText := fmt.Sprintf("The status of your declaration %s changed to %s.\n\nIf you did not expect this change, contact support.", dec.TrackingNumber, newStatus)
	htmlContent := templates.RenderGenericEmail(subject, plainText)

	from := mail.NewEmail("OVPR", "no-reply@ovpr.ci")
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send status change email", "to", toEmail, "error", err)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", toEmail)
	}
}

// DeleteDeclarationHandler removes a declaration outright. Moderation only;
// owners resolve their declarations instead of deleting them.
func (d Declaration) DeleteDeclarationHandler(w http.ResponseWriter, r *http.Request) {
	declarationID := mux.Vars(r)["declaration_id"]

	dID, err := primitive.ObjectIDFromHex(declarationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	err = d.DB.DeleteOne(r.Context(), bson.M{"_id": dID})
	if err != nil {
		config.ErrorStatus("failed to delete declaration", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": true}`))
}

// CreateRewardCheckoutHandler opens a stripe checkout session for the reward
// offered on a lost-item declaration
func (d Declaration) CreateRewardCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	declarationID := mux.Vars(r)["declaration_id"]

	dID, err := primitive.ObjectIDFromHex(declarationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var dec models.Declaration
	err = d.DB.FindOne(r.Context(), bson.M{"_id": dID}).Decode(&dec)
	if err != nil {
		config.ErrorStatus("failed to get declaration by ID", http.StatusNotFound, w, err)
		return
	}

	if dec.Reward == nil || dec.Reward.Amount <= 0 {
		config.ErrorStatus("declaration has no reward", http.StatusBadRequest, w, nil)
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("xof"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Reward for %s", dec.TrackingNumber)),
					},
					UnitAmount: stripe.Int64(int64(dec.Reward.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(baseURL + "/api/v1/success"),
		CancelURL:  stripe.String(baseURL + "/api/v1/cancel"),
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]string{"url": s.URL})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (d Declaration) handleSuccessRedirect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<html><body><h1>Payment complete</h1><p>You can close this window.</p></body></html>"))
}

func (d Declaration) handleCancelRedirect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<html><body><h1>Payment canceled</h1><p>No charge was made.</p></body></html>"))
}

// getPage returns the requested page number or 0 when unset or invalid
func getPage(Page int, r *http.Request) int {
	if r.URL.Query().Get("page") == "" {
		zap.S().Warnf("page not set, using default of %v", Page)
	} else {
		var err error
		Page, err = strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
		}
		if Page < 0 {
			zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", Page))
			return 0
		}
	}
	return Page
}

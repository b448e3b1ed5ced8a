// Package docs OVPR API.
//
// Documentation of the OVPR lost, found and stolen item declaration API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.ovpr.ci
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/Loicqra12/ovpr-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/declaration/{declaration_id} declaration declarationByID
// Gets a single declaration by ID.
// responses:
//   200: declarationByIDResponse

// Shows a single declaration by the given {ID}
// swagger:response declarationByIDResponse
type declarationByIDResponseWrapper struct {
	// in:body
	Body models.Declaration
}

// swagger:route GET /api/v1/declaration/tracking/{tracking_number} declaration declarationByTrackingNumber
// Gets a single declaration by its public tracking number.
// responses:
//   200: declarationByTrackingNumberResponse

// Shows a single declaration by the given tracking number
// swagger:response declarationByTrackingNumberResponse
type declarationByTrackingNumberResponseWrapper struct {
	// in:body
	Body models.Declaration
}

// swagger:route GET /api/v1/declarations declaration declarationList
// Lists declarations, paginated and filterable by type, category and status.
// responses:
//   200: declarationListResponse

// Shows all declarations matching the given filters
// swagger:response declarationListResponse
type declarationListResponseWrapper struct {
	// in:body
	Body []models.Declaration
}

// swagger:route POST /api/v1/wizard wizard wizardStart
// Opens a new declaration wizard session.
// responses:
//   201: wizardSessionResponse

// swagger:route GET /api/v1/wizard/{session_id} wizard wizardSession
// Gets a wizard session by ID.
// responses:
//   200: wizardSessionResponse

// Shows a wizard session with its step schema, current position and draft
// swagger:response wizardSessionResponse
type wizardSessionResponseWrapper struct {
	// in:body
	Body models.WizardSession
}

// swagger:route GET /api/v1/announcements announcement announcementList
// Lists active announcements.
// responses:
//   200: announcementListResponse

// Shows all active announcements, newest first
// swagger:response announcementListResponse
type announcementListResponseWrapper struct {
	// in:body
	Body []models.Announcement
}

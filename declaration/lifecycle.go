package declaration

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Loicqra12/ovpr-api/models"
)

// Lifecycle states. A declaration starts active; its owner can declare an
// outcome (lost, stolen, forgotten, sold); resolved is reachable from any
// state once the item is returned or claimed, and is final.
const (
	StatusActive    = "active"
	StatusLost      = "lost"
	StatusStolen    = "stolen"
	StatusForgotten = "forgotten"
	StatusSold      = "sold"
	StatusResolved  = "resolved"
)

var statuses = map[string]bool{
	StatusActive:    true,
	StatusLost:      true,
	StatusStolen:    true,
	StatusForgotten: true,
	StatusSold:      true,
	StatusResolved:  true,
}

var (
	// ErrUnknownStatus rejects a target status outside the lifecycle
	ErrUnknownStatus = errors.New("unknown status")
	// ErrMissingPoliceReport rejects a move to stolen without a report reference
	ErrMissingPoliceReport = errors.New("transition to stolen requires a police report reference")
	// ErrResolvedFinal rejects any transition out of resolved
	ErrResolvedFinal = errors.New("resolved declarations cannot change status")
)

// ValidStatus reports whether s is a known lifecycle state
func ValidStatus(s string) bool {
	return statuses[s]
}

// Transition validates a status change for d and returns the history entry
// to append. d itself is not mutated; persistence appends the entry and sets
// the new status in one atomic update keyed on d's current status.
//
// report optionally supplies the police report accompanying the change (it
// satisfies the stolen rule when d carries none). Beyond the stolen rule and
// resolved terminality, transitions are deliberately permissive.
func Transition(d *models.Declaration, newStatus, actor, comment string, report *models.PoliceReport, now time.Time) (models.StatusEntry, error) {
	if !ValidStatus(newStatus) {
		return models.StatusEntry{}, fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}
	if d.Status == StatusResolved {
		return models.StatusEntry{}, ErrResolvedFinal
	}
	if newStatus == StatusStolen && !hasPoliceReport(d, report) {
		return models.StatusEntry{}, ErrMissingPoliceReport
	}
	return models.StatusEntry{
		Status:    newStatus,
		Timestamp: primitive.NewDateTimeFromTime(now),
		Actor:     actor,
		Comment:   comment,
	}, nil
}

func hasPoliceReport(d *models.Declaration, report *models.PoliceReport) bool {
	if report != nil && report.ReportNumber != "" {
		return true
	}
	return d.PoliceReport != nil && d.PoliceReport.ReportNumber != ""
}

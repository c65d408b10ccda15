/*
Package attendance tracks violation points per employee.

PURPOSE:
  Tallies attendance violation points with type-specific expiration
  policies. The leave engine consults the active total at submission time
  (a high count flags the request for review); nothing here mutates leave
  state.

POINT VALUES:
  Points are quantized to 0.25 increments. Standard values:
    1.00  no-call-no-show, whole-day absence
    0.50  half-day absence
    0.25  tardy, undertime

EXPIRATION:
  Each point carries an expiration policy tag:
    sro   - expires 6 months after the shift date
    gbro  - expires 12 months after the shift date
    none  - never expires
  ActivePoints sums only points whose expiry is after "now". Expiry is
  computed from the shift date at recording time and stored.
*/
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidPoints is returned for a point value that is not a positive
// multiple of the 0.25 quantum.
var ErrInvalidPoints = errors.New("invalid point value")

// =============================================================================
// POINT TYPES AND POLICIES
// =============================================================================

type PointType string

const (
	PointNoCallNoShow    PointType = "ncns"
	PointWholeDayAbsence PointType = "whole_day_absence"
	PointHalfDayAbsence  PointType = "half_day_absence"
	PointTardy           PointType = "tardy"
	PointUndertime       PointType = "undertime"
)

// ExpirationPolicy tags how a point ages out.
type ExpirationPolicy string

const (
	ExpireSRO  ExpirationPolicy = "sro"
	ExpireGBRO ExpirationPolicy = "gbro"
	ExpireNone ExpirationPolicy = "none"
)

// ExpiryFrom computes when a point recorded for shiftDate ages out under
// this policy. Nil means it never expires.
func (p ExpirationPolicy) ExpiryFrom(shiftDate time.Time) *time.Time {
	var exp time.Time
	switch p {
	case ExpireSRO:
		exp = shiftDate.AddDate(0, 6, 0)
	case ExpireGBRO:
		exp = shiftDate.AddDate(1, 0, 0)
	default:
		return nil
	}
	return &exp
}

// quantum is the smallest point increment.
var quantum = decimal.NewFromFloat(0.25)

// Point is one recorded attendance violation.
type Point struct {
	ID         string
	EmployeeID string
	ShiftDate  time.Time
	Type       PointType
	Points     decimal.Decimal
	Policy     ExpirationPolicy
	ExpiresAt  *time.Time // nil when the policy never expires
	CreatedAt  time.Time
}

// Expired reports whether the point is no longer active at now.
func (p Point) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

type Store interface {
	SavePoint(ctx context.Context, p *Point) error
	PointsByEmployee(ctx context.Context, employeeID string) ([]Point, error)
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker records points and answers the active-point query.
type Tracker struct {
	store Store
	log   *slog.Logger
}

func NewTracker(store Store, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{store: store, log: log}
}

// Record stores a violation point. The point value must be a positive
// multiple of 0.25.
func (t *Tracker) Record(ctx context.Context, employeeID string, shiftDate time.Time, pt PointType, points decimal.Decimal, policy ExpirationPolicy, now time.Time) (*Point, error) {
	if !points.IsPositive() || !points.Mod(quantum).IsZero() {
		return nil, fmt.Errorf("%w: must be a positive multiple of 0.25, got %s", ErrInvalidPoints, points)
	}

	p := &Point{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		ShiftDate:  shiftDate,
		Type:       pt,
		Points:     points,
		Policy:     policy,
		CreatedAt:  now,
	}
	p.ExpiresAt = policy.ExpiryFrom(shiftDate)

	if err := t.store.SavePoint(ctx, p); err != nil {
		return nil, fmt.Errorf("save point: %w", err)
	}
	t.log.Info("attendance point recorded",
		"employee_id", employeeID, "type", pt, "points", points, "policy", policy)
	return p, nil
}

// ActivePoints sums the employee's unexpired points as of now.
func (t *Tracker) ActivePoints(ctx context.Context, employeeID string, now time.Time) (decimal.Decimal, error) {
	points, err := t.store.PointsByEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load points: %w", err)
	}
	total := decimal.Zero
	for _, p := range points {
		if !p.Expired(now) {
			total = total.Add(p.Points)
		}
	}
	return total, nil
}

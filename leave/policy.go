/*
policy.go - Credit split / conversion policy

PURPOSE:
  Decides, at the moment dual approval completes, how many of a VL/SL
  request's days are credited and how many convert to unpaid time off
  (UPTO). Runs exactly once per request.

DECISION TABLE (N = days requested, C = min(floor(balance), floor(N))):
  not eligible       -> whole request converts in place to UPTO, deduct 0
  C == 0             -> same conversion, different reason text
  0 < C < N          -> parent narrowed to its first C workdays, companion
                        UPTO covers the remaining N-C days, deduct C
  C == N             -> full credit, deduct N, nothing else changes

WHY WHOLE-DAY FLOORING:
  The business does not grant partial-day VL/SL. Credits only ever cover
  whole days, so a fractional request (2.5 days, say) credits at most
  floor(N) days and the half-day tail rides the UPTO companion. The
  companion keeps the employee's full requested absence on record for
  attendance purposes even when the credited portion is less.

PURITY:
  Evaluate is a pure function: (request, balance, eligibility) -> outcome.
  The caller applies the outcome atomically (see service.go / store.go).
*/
package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SPLIT OUTCOME
// =============================================================================

// SplitOutcome is the result of evaluating the credit policy for a request
// entering the approved state.
type SplitOutcome struct {
	// Parent is the request with the policy's mutations applied (type,
	// dates, days, credit fields). Status is already approved.
	Parent Request

	// Companion is the uncredited UPTO tail, or nil when no split
	// occurred. ID is left empty for the caller to assign.
	Companion *Request

	// Deduction is the whole-day amount the ledger must deduct
	// (zero in conversion cases).
	Deduction decimal.Decimal
}

// Evaluate runs the split/conversion policy.
//
// req must already carry both approvals and StatusApproved; balance is the
// employee's current aggregate ledger balance; eligible is the externally
// evaluated credit-program eligibility (e.g. a tenure gate).
//
// Non-credited types (BL, SPL, LOA, LDV, UPTO) pass through unchanged with
// zero deduction.
func Evaluate(req Request, balance decimal.Decimal, eligible bool) SplitOutcome {
	if !req.Type.Credited() {
		return SplitOutcome{Parent: req, Deduction: decimal.Zero}
	}

	if !eligible {
		return convertInPlace(req, fmt.Sprintf("Not eligible for %s credits", req.Type))
	}

	n := req.DaysRequested
	creditable := decimal.Min(balance.Floor(), n.Floor())

	switch {
	case creditable.Equal(n):
		// Full credit: type and dates unchanged.
		req.CreditsDeducted = n
		req.CreditsApplied = true
		return SplitOutcome{Parent: req, Deduction: n}

	case creditable.IsPositive():
		return split(req, creditable)

	case !n.Floor().IsPositive():
		return convertInPlace(req, fmt.Sprintf("Request under one whole day; %s credits cover whole days only", req.Type))

	default:
		return convertInPlace(req, fmt.Sprintf("No %s credits available", req.Type))
	}
}

// convertInPlace turns the whole request into UPTO with zero deduction.
// No companion is created.
func convertInPlace(req Request, reason string) SplitOutcome {
	req.Type = TypeUPTO
	req.CreditsDeducted = decimal.Zero
	req.CreditsApplied = false
	req.NoCreditReason = &reason
	return SplitOutcome{Parent: req, Deduction: decimal.Zero}
}

// split narrows the parent to its first creditable workdays and builds
// the companion UPTO request covering the remaining tail. creditable is a
// positive whole number strictly below DaysRequested.
func split(req Request, creditable decimal.Decimal) SplitOutcome {
	// Submission validates DaysRequested <= CountWorkdays(start, end), so
	// k = creditable < DaysRequested <= len(days) always holds here.
	days := Workdays(req.StartDate, req.EndDate)
	k := int(creditable.IntPart())

	reason := fmt.Sprintf("Partial %s credits: %s of %s day(s) credited, remainder converted to UPTO",
		req.Type, creditable, req.DaysRequested)

	companion := req // value copy before narrowing
	companion.Type = TypeUPTO
	companion.StartDate = days[k]
	companion.DaysRequested = req.DaysRequested.Sub(creditable)
	companion.CreditsDeducted = decimal.Zero
	companion.CreditsApplied = false
	companion.NoCreditReason = &reason
	companion.LinkedRequestID = &req.ID
	companion.ID = "" // assigned by the caller

	// Parent keeps its original start date; the range narrows to exactly
	// the creditable days.
	req.EndDate = days[k-1]
	req.DaysRequested = creditable
	req.CreditsDeducted = creditable
	req.CreditsApplied = true
	req.NoCreditReason = &reason

	return SplitOutcome{
		Parent:    req,
		Companion: &companion,
		Deduction: creditable,
	}
}

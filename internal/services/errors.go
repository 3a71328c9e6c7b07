// Package services defines the business logic for triage conversations,
// the live queue, ticket booking, the patient navigator, and clinic
// records. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

var (
	// ErrValidation is returned when a request carries malformed or missing
	// fields. Callers must not retry without fixing the request.
	ErrValidation = errors.New("invalid request")

	// ErrTicketNotFound indicates that the requested ticket does not exist.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrRecordNotFound indicates that the requested clinic record does not
	// exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidTransition is returned when an action is not permitted from
	// the ticket's current status. Callers should re-fetch state before
	// retrying.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict is returned when a concurrent mutation lost the race.
	// Callers may retry after re-reading.
	ErrConflict = errors.New("conflicting concurrent update")

	// ErrDuplicateActiveVisit is returned when a booking would give a
	// patient a second open ticket for the same check-in.
	ErrDuplicateActiveVisit = errors.New("patient already has an active visit")

	// ErrUnknownAction is returned for booking actions outside the
	// supported set.
	ErrUnknownAction = errors.New("unknown booking action")

	// ErrUnknownDoctor is returned when an assignment names a doctor who is
	// not on the injected duty roster.
	ErrUnknownDoctor = errors.New("doctor not on duty roster")
)

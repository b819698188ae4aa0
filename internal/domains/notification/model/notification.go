package model

import (
	"fmt"
	"strings"
)

// Kind identifies what happened to the recipient's request.
type Kind string

const (
	KindRequestApproved Kind = "REQUEST_APPROVED"
	KindRequestRejected Kind = "REQUEST_REJECTED"
)

// Notification is the JSON frame pushed to a connected user.
type Notification struct {
	Type      Kind   `json:"type"`
	Message   string `json:"message"`
	RequestID int64  `json:"requestId"`
}

// Decision builds the notification for an approved or rejected book request,
// e.g. "Your issue request has been approved".
func Decision(kind Kind, requestType string, requestID int64) Notification {
	verb := "approved"
	if kind == KindRequestRejected {
		verb = "rejected"
	}

	return Notification{
		Type:      kind,
		Message:   fmt.Sprintf("Your %s request has been %s", strings.ToLower(requestType), verb),
		RequestID: requestID,
	}
}

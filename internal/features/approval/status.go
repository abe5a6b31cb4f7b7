package approval

import (
	"strings"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending     Status = "PENDING"
	StatusApprovedPM  Status = "APPROVED_PM"
	StatusRatifiedMgr Status = "RATIFIED_MGR"
	StatusRejected    Status = "REJECTED"
)

var AllStatuses = []Status{StatusPending, StatusApprovedPM, StatusRatifiedMgr, StatusRejected}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApprovedPM, StatusRatifiedMgr, StatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no actor can move a record out of s.
func (s Status) IsTerminal() bool {
	return s == StatusRatifiedMgr || s == StatusRejected
}

// IsApproved reports whether hours in this status count as billable.
func (s Status) IsApproved() bool {
	return s == StatusApprovedPM || s == StatusRatifiedMgr
}

type Actor string

const (
	ActorAdmin          Actor = "ADMIN"
	ActorProjectManager Actor = "PROJECT_MANAGER"
	ActorDirector       Actor = "DIRECTOR"
	ActorSubcontractor  Actor = "SUBCONTRACTOR"
	ActorNone           Actor = ""
)

// ActorFromRoleID maps a role definition id such as "project_manager" to its
// workflow actor. Custom roles carry no workflow authority.
func ActorFromRoleID(roleID string) Actor {
	switch Actor(strings.ToUpper(roleID)) {
	case ActorAdmin:
		return ActorAdmin
	case ActorProjectManager:
		return ActorProjectManager
	case ActorDirector:
		return ActorDirector
	case ActorSubcontractor:
		return ActorSubcontractor
	default:
		return ActorNone
	}
}

// Identity is the acting user passed into every workflow and quota operation.
type Identity struct {
	UserID          uuid.UUID
	Email           string
	Actor           Actor
	SubcontractorID *string
}

// OwnsSubcontractor reports whether the identity is the login of the given
// resource record.
func (i Identity) OwnsSubcontractor(subcontractorID string) bool {
	return i.SubcontractorID != nil && *i.SubcontractorID == subcontractorID
}

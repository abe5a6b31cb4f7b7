package approval

import "slices"

// transitions is the complete table of allowed moves. Anything absent is
// rejected.
var transitions = map[Actor]map[Status][]Status{
	ActorProjectManager: {
		StatusPending: {StatusApprovedPM, StatusRejected},
	},
	ActorDirector: {
		StatusApprovedPM: {StatusRatifiedMgr, StatusRejected},
	},
}

func CanTransition(actor Actor, from, to Status) bool {
	return slices.Contains(transitions[actor][from], to)
}

// AllowedTargets lists the statuses actor may move a record in from to.
func AllowedTargets(actor Actor, from Status) []Status {
	targets := transitions[actor][from]
	if len(targets) == 0 {
		return []Status{}
	}

	return slices.Clone(targets)
}

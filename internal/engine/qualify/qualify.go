// internal/engine/qualify/qualify.go

// Package qualify decides talent-pool membership. This is the only
// definition of the rule in the codebase; the search pipeline and the
// statistics aggregation both call it rather than restating it.
package qualify

import "talent-engine/internal/models"

// Qualify reports whether a profile counts as a searchable talent profile:
// either the owner opted in, or at least one signal exists. A lone orphaned
// skill assignment qualifies on its own; signals imply intent even when the
// flag was never set.
func Qualify(profile *models.Profile, signals *models.SignalSet) bool {
	if profile == nil {
		return false
	}
	if profile.TalentOpt {
		return true
	}
	return !signals.Empty()
}

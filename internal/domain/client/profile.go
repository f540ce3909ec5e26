// Package client holds the read-only client profile consulted by compliance checks.
package client

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrClientNotFound is returned by stores when no profile exists.
var ErrClientNotFound = errors.New("client not found")

// NoRestriction is the conventional dietary preference for clients without one.
const NoRestriction = "sin_restricciones"

// Profile is the slice of a client record relevant to meal planning.
type Profile struct {
	ClientID          uuid.UUID
	FullName          string
	Allergens         []string
	DietaryPreference string
}

// EmptyProfile is used when a plan owner has no stored profile.
func EmptyProfile(clientID uuid.UUID) Profile {
	return Profile{ClientID: clientID, DietaryPreference: NoRestriction}
}

// Diet returns the normalized dietary preference.
func (p Profile) Diet() string {
	return strings.ToLower(strings.TrimSpace(p.DietaryPreference))
}

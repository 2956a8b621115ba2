package auth

import (
	"context"
	"fmt"
	"log"

	"github.com/procurehub/procurement-service/internal/models"
)

// State tracks the reconciliation of the session role claim against the
// stored profile role.
type State string

const (
	StateConsistent State = "consistent" // claim matched the profile directly
	StateRefreshing State = "refreshing" // mismatch found, refresh in flight
	StateResolved   State = "resolved"   // refresh produced a matching claim
	StateFailed     State = "failed"     // refresh failed or claim still diverges
)

// Identity is a resolved caller: the stored profile plus how the session
// claim was reconciled with it.
type Identity struct {
	Profile *models.UserProfile
	State   State
}

// Role returns the caller's effective role. The stored profile is the source
// of truth once the claim has been reconciled.
func (i *Identity) Role() models.UserRole {
	return i.Profile.Role
}

// ProfileSource loads stored profiles for authenticated principals.
type ProfileSource interface {
	GetProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
}

// SessionRefresher asks the identity provider to reissue the session and
// returns the refreshed role claim.
type SessionRefresher interface {
	RefreshRole(ctx context.Context, userID string) (string, error)
}

// Resolver reconciles the role claim carried by a session with the role
// stored on the user's profile. On mismatch it refreshes the session exactly
// once and re-checks; a claim that still diverges is an authorization failure.
type Resolver struct {
	profiles  ProfileSource
	refresher SessionRefresher
	logger    *log.Logger
}

// NewResolver creates a new Resolver. All dependencies are required.
func NewResolver(profiles ProfileSource, refresher SessionRefresher, logger *log.Logger) (*Resolver, error) {
	if profiles == nil {
		return nil, fmt.Errorf("profile source cannot be nil")
	}
	if refresher == nil {
		return nil, fmt.Errorf("session refresher cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	return &Resolver{profiles: profiles, refresher: refresher, logger: logger}, nil
}

// Resolve maps an authenticated principal and its session role claim to an
// Identity, refreshing the session once when the claim and the stored role
// disagree.
func (r *Resolver) Resolve(ctx context.Context, userID, claimedRole string) (*Identity, error) {
	if userID == "" {
		return nil, models.NewAuthorizationError("missing user identity; sign in and retry")
	}

	profile, err := r.profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, models.NewAuthorizationError("your account is inactive; contact an administrator")
	}

	if claimedRole == string(profile.Role) {
		return &Identity{Profile: profile, State: StateConsistent}, nil
	}

	r.logger.Printf("role mismatch for user %s: claim=%q profile=%q, refreshing session", userID, claimedRole, profile.Role)

	refreshedRole, err := r.refresher.RefreshRole(ctx, userID)
	if err != nil {
		r.logger.Printf("session refresh failed for user %s: %v", userID, err)
		return &Identity{Profile: profile, State: StateFailed},
			models.NewAuthorizationError("your session role is out of date and could not be refreshed; sign out and sign in again")
	}

	if refreshedRole != string(profile.Role) {
		return &Identity{Profile: profile, State: StateFailed},
			models.NewAuthorizationError("your session role does not match your profile; sign out and sign in again")
	}

	return &Identity{Profile: profile, State: StateResolved}, nil
}

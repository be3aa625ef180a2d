package messaging

import "context"

// Display is the name and avatar shown for a user in the inbox.
type Display struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// DisplayProfile is implemented by CandidateDisplay and RecruiterDisplay only.
type DisplayProfile interface {
	Role() Role
	display(userID string) Display
}

type CandidateDisplay struct {
	FullName string
	Avatar   string
}

func (CandidateDisplay) Role() Role { return RoleCandidate }

func (d CandidateDisplay) display(userID string) Display {
	return Display{
		Name:   firstNonEmpty(d.FullName, userID),
		Avatar: d.Avatar,
	}
}

type RecruiterDisplay struct {
	FullName    string
	Avatar      string
	CompanyName string
	CompanyLogo string
}

func (RecruiterDisplay) Role() Role { return RoleRecruiter }

func (d RecruiterDisplay) display(userID string) Display {
	return Display{
		Name:   firstNonEmpty(d.CompanyName, d.FullName, userID),
		Avatar: firstNonEmpty(d.CompanyLogo, d.Avatar),
	}
}

// ResolveDisplay renders a profile. A nil profile falls back to the raw user id.
func ResolveDisplay(userID string, profile DisplayProfile) Display {
	if profile == nil {
		return Display{Name: userID}
	}
	return profile.display(userID)
}

// IdentityDirectory resolves users and their role-specific display profile.
type IdentityDirectory interface {
	User(ctx context.Context, userID string) (*User, error)
	// DisplayProfile returns nil, nil when the user has no profile for role.
	DisplayProfile(ctx context.Context, userID string, role Role) (DisplayProfile, error)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

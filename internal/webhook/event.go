package webhook

// Event types delivered by the identity provider.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event is the provider's delivery envelope.
type Event struct {
	Type string   `json:"type"`
	Data UserData `json:"data"`
}

// UserData carries the user fields the intake consumes. The provider
// sends more; unknown fields are ignored.
type UserData struct {
	ID             string         `json:"id"`
	PrimaryEmailID string         `json:"primary_email_address_id"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
}

// EmailAddress is one entry of the user's email address list.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// PrimaryEmail resolves the user's primary email address, falling back
// to the first listed address when the primary ID doesn't resolve.
func (d UserData) PrimaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailID {
			return e.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

package session

import "context"

const (
	// SchemeID is the fixed identifier the manager registers under in the
	// host's authentication registry.
	SchemeID = "ldap"

	// Label is the display name shown by the host's account UI.
	Label = "LDAP"
)

// Provider is the surface the host's authentication registry calls into.
// *Manager implements it.
type Provider interface {
	CreateSession(ctx context.Context, scopes []string) (*Record, error)
	RemoveSession(ctx context.Context, id string) error
	Sessions(ctx context.Context) ([]Record, error)
}

// Registry abstracts the host's authentication-provider registry.
type Registry interface {
	// RegisterProvider registers a provider for a scheme and returns a
	// deregistration function.
	RegisterProvider(schemeID, label string, supportsMultipleAccounts bool, provider Provider) (func(), error)
}

// Register registers the manager with the host declaring single-account
// support. Deregistration is tied to the manager's Dispose.
func Register(registry Registry, m *Manager) error {
	unregister, err := registry.RegisterProvider(SchemeID, Label, false, m)
	if err != nil {
		return err
	}
	m.AddDisposable(unregister)
	return nil
}

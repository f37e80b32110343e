package oidckit

// Identity is the verified payload of an identity assertion, ready for
// upsert into the user store.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
	// Claims carries the raw verified claims, standard and private.
	Claims map[string]any
}

package models

// SessionUser is the identity-provider view of the signed-in user. It is
// read-only here: accounts are created and managed by the provider, this
// service only references them through OwnerID on todos.
type SessionUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"image"`
}

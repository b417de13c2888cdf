package model

// Profile is the authenticated user's account data. The client holds a
// cached copy that is only ever overwritten with a server response.
type Profile struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsVendor  bool   `json:"is_vendor"`
}

// LoginRequest is the credential payload for POST /api/auth/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /api/auth/register/.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// AuthResponse carries the bearer token issued on login or registration.
// The embedded user payload is informational; the cached profile always
// comes from a profile fetch.
type AuthResponse struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh,omitempty"`
	User    *Profile `json:"user,omitempty"`
}

// ProfileUpdate is a partial profile for PUT /api/auth/profile/. Zero-valued
// fields are omitted so the server treats the update as partial.
type ProfileUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// StoreSettings is the vendor's storefront configuration.
type StoreSettings struct {
	StoreName string `json:"store_name"`
}

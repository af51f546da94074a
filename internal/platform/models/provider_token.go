package models

// ProviderToken holds a user's credentials for the tabular provider.
// Acquisition and refresh happen outside the delivery pipeline; the tabular
// adapter only reads the current access token per call.
type ProviderToken struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

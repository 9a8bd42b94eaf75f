package packets

// REQUESTS FOR /api/*

// StartSessionRequest may carry a pre-issued sign-in token. Without one
// the server's host token, or else anonymous sign-in, is used.
type StartSessionRequest struct {
	Token string `json:"token"`
}

// RegisterRequest is the registration form. Blank fields are rejected
// after trimming, so no binding tags here.
type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	GroupName   string `json:"group_name"`
}

package authapi

// authenticateRequest is the POST /api/v1/authenticate body.
// Missing fields decode as "" and fail validation.
type authenticateRequest struct {
	Email    string `json:"email" jsonschema:"format=email,example=admin@local.com"`
	Password string `json:"password" jsonschema:"minLength=8"`
}

// authenticateResponse carries the token and its expiry in epoch seconds.
type authenticateResponse struct {
	Token   string `json:"token" jsonschema:"description=HS256 signed JWT"`
	Expires int64  `json:"expires" jsonschema:"description=Expiry in epoch seconds"`
}

type userResponse struct {
	ID    string `json:"id" jsonschema:"format=uuid"`
	Email string `json:"email"`
}

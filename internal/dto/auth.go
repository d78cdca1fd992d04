package dto

// SendCodeRequest asks for a verification code.
type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest exchanges a code for a session.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric,min=4,max=8"`
}

// MeResponse describes the caller and what it may do.
type MeResponse struct {
	Email        string      `json:"email"`
	Profile      interface{} `json:"profile,omitempty"`
	AdminRole    interface{} `json:"adminRole,omitempty"`
	Capabilities []string    `json:"capabilities"`
	Landing      string      `json:"landing"`
}

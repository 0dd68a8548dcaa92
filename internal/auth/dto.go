package auth

import (
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

type LoginRequest struct {
	RequestHeader transport.RequestHeader `json:"request_header"`
	Identifier    string                  `json:"identifier"`
	Password      string                  `json:"password"`
}

func (r *LoginRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *CurrentUser `json:"user"`
}

type ForgotPasswordRequest struct {
	RequestHeader transport.RequestHeader `json:"request_header"`
	Email         string                  `json:"email"`
}

func (r *ForgotPasswordRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type ResetPasswordRequest struct {
	RequestHeader   transport.RequestHeader `json:"request_header"`
	Email           string                  `json:"email"`
	Token           string                  `json:"token"`
	Password        string                  `json:"password"`
	ConfirmPassword string                  `json:"confirm_password"`
}

func (r *ResetPasswordRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

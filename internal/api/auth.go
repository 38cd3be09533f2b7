package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rcliao/nutricoach/internal/model"
)

// AuthService binds /api/auth.
type AuthService struct{ c *Client }

// SignInRequest carries either a username or, for the legacy endpoint shape, an email.
type SignInRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token       string       `json:"token"`
	PatientID   model.FlexID `json:"patientId"`
	ClinicianID model.FlexID `json:"clinicianId"`
	Username    string       `json:"username"`
	Role        string       `json:"role"`
}

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Age      int      `json:"age"`
	Weight   float64  `json:"weight"`
	Height   float64  `json:"height"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// SignIn exchanges credentials for a session. The role is taken only from the
// response's role field. A missing username is recovered from the token's
// subject claim, then from the email's local part.
func (a *AuthService) SignIn(ctx context.Context, req SignInRequest) (model.Session, error) {
	if req.Password == "" || (req.Username == "" && req.Email == "") {
		return model.Session{}, errors.New("sign in: missing credentials")
	}
	var resp signInResponse
	if err := a.c.write(ctx, http.MethodPost, "/api/auth/signin", req, &resp); err != nil {
		return model.Session{}, err
	}
	if resp.Token == "" {
		return model.Session{}, errors.New("sign in: response carried no token")
	}

	username := resp.Username
	if username == "" {
		username = tokenSubject(resp.Token)
	}
	if username == "" {
		username = req.Username
	}
	if username == "" {
		username, _, _ = strings.Cut(req.Email, "@")
	}

	return model.Session{
		Token:       resp.Token,
		PatientID:   resp.PatientID.String(),
		ClinicianID: resp.ClinicianID.String(),
		Username:    username,
		Role:        resp.Role,
	}, nil
}

// SignUp registers a new account.
func (a *AuthService) SignUp(ctx context.Context, req SignUpRequest) error {
	return a.c.write(ctx, http.MethodPost, "/api/auth/signup", req, nil)
}

// tokenSubject reads the sub claim without verifying the signature; the
// client has no key and only uses it for display.
func tokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

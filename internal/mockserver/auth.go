package mockserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/rcliao/nutricoach/internal/model"
)

type signInBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignIn(c *gin.Context) {
	var body signInBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Password == "" || (body.Username == "" && body.Email == "") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing credentials"})
		return
	}

	legacy := body.Username == ""
	username := body.Username
	if legacy {
		username, _, _ = strings.Cut(body.Email, "@")
	}

	s.mu.Lock()
	u := s.ensurePatient(username, body.Email)
	s.mu.Unlock()

	token, err := s.issue(u.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "token generation failed"})
		return
	}

	if legacy {
		c.JSON(http.StatusOK, gin.H{"token": token, "username": u.Username})
		return
	}
	resp := gin.H{"token": token, "username": u.Username, "role": u.Role}
	if u.PatientID != 0 {
		resp["patientId"] = u.PatientID
	}
	if u.ClinicianID != 0 {
		resp["clinicianId"] = u.ClinicianID
	}
	c.JSON(http.StatusOK, resp)
}

type signUpBody struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Age      int      `json:"age"`
	Weight   float64  `json:"weight"`
	Height   float64  `json:"height"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func (s *Server) handleSignUp(c *gin.Context) {
	var body signUpBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[body.Username]; ok {
		c.JSON(http.StatusConflict, gin.H{"message": "username taken"})
		return
	}

	u := &user{Username: body.Username, Role: model.RolePatient}
	for _, r := range body.Roles {
		if strings.EqualFold(r, model.RoleClinician) {
			u.Role = model.RoleClinician
		}
	}
	if u.Role == model.RoleClinician {
		u.ClinicianID = s.id()
	} else {
		p := &patient{ID: s.id(), Name: body.Name, Email: body.Email, Age: body.Age, Weight: body.Weight, Height: body.Height}
		if p.Name == "" {
			p.Name = body.Username
		}
		s.patients[p.ID] = p
		u.PatientID = p.ID
	}
	s.users[u.Username] = u
	c.JSON(http.StatusCreated, gin.H{"username": u.Username, "role": u.Role})
}

func (s *Server) issue(username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"iat": s.now().Unix(),
		"exp": s.now().Add(72 * time.Hour).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			return
		}
		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		}, jwt.WithTimeFunc(s.now))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		sub, _ := token.Claims.GetSubject()

		s.mu.Lock()
		u, ok := s.users[sub]
		s.mu.Unlock()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unknown user"})
			return
		}
		c.Set("user", u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *user {
	u, _ := c.Get("user")
	return u.(*user)
}

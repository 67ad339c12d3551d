package echoapi

import (
	"sort"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

const (
	contextTokenKey = "userToken"

	// role prefixes, e.g. "admin:principal", "teacher:math"
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username  string   `json:"username,omitempty"`
	Email     string   `json:"email,omitempty"`
	IsTeacher bool     `json:"is_teacher,omitempty"`
	IsAdmin   bool     `json:"is_admin,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// NewClaims returns the Claims of an authenticated caller; admin and teacher flags derive from roles.
func NewClaims(conf *core.Config, subject, username, email string, roles ...string) *Claims {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			Audience:  conf.AppName,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: username,
		Email:    email,
		Roles:    roles,
	}
	for _, role := range roles {
		switch strings.SplitN(role, ":", 2)[0] {
		case RoleAdmin:
			claims.IsAdmin = true
		case RoleTeacher:
			claims.IsTeacher = true
		}
	}
	return claims
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	jwtConf := newJWTConfig(conf)
	token := jwt.NewWithClaims(jwt.GetSigningMethod(jwtConf.SigningMethod), claims)

	ss, err := token.SignedString(jwtConf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func contextPerson(ctx echo.Context) core.Person {
	var p core.Person
	if claims, err := getContextClaims(ctx); err == nil {
		p.ID = claims.Subject
		p.Username = claims.Username
		p.Email = claims.Email
	}
	return p
}

func contextHasAnyRole(ctx echo.Context, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	if claims, err := getContextClaims(ctx); err == nil {
		owned := append([]string(nil), claims.Roles...)
		sort.Strings(owned)
		for _, role := range roles {
			if i := sort.SearchStrings(owned, role); i < len(owned) && owned[i] == role {
				return true
			}
		}
	}
	return false
}

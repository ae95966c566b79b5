package http

import (
	"errors"
	"net/http"
	"strings"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

// Claims is the payload of the bearer tokens issued by the identity service.
// The subject is the user id.
type Claims struct {
	Name               string   `json:"name"`
	Role               string   `json:"role"`
	BranchID           string   `json:"branch_id,omitempty"`
	AuthorizedBranches []string `json:"authorized_branches,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts verified claims into the caller of an operation.
func (c *Claims) Actor() (kernel.Actor, error) {
	id, err := kernel.UUIDFromString(c.Subject)
	if err != nil {
		return kernel.Actor{}, err
	}

	var branchID *kernel.UUID
	if c.BranchID != "" {
		b, err := kernel.UUIDFromString(c.BranchID)
		if err != nil {
			return kernel.Actor{}, err
		}
		branchID = &b
	}

	authorized := make([]kernel.UUID, 0, len(c.AuthorizedBranches))
	for _, raw := range c.AuthorizedBranches {
		b, err := kernel.UUIDFromString(raw)
		if err != nil {
			return kernel.Actor{}, err
		}
		authorized = append(authorized, b)
	}

	return kernel.NewActor(id, c.Name, kernel.Role(c.Role), branchID, authorized)
}

// TokenVerifier checks HS256 bearer tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
}

func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *TokenVerifier) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Authenticate resolves the bearer token into a kernel.Actor stored on the
// echo context.
func Authenticate(v *TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims, err := v.Verify(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}
			actor, err := claims.Actor()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims").SetInternal(err)
			}

			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) (kernel.Actor, error) {
	actor, ok := c.Get(actorKey).(kernel.Actor)
	if !ok {
		return kernel.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return actor, nil
}

// Require admits actors whose role is granted resource by policy.
func Require(policy services.AccessPolicy, resource services.Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := actorFrom(c)
			if err != nil {
				return err
			}
			if !policy.Resolve(actor.Role(), resource) {
				return errs.NewForbiddenError(string(resource), "role "+actor.Role().String()+" is not permitted")
			}
			return next(c)
		}
	}
}

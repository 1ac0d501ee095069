package middleware

import (
	"strings"

	"construction-scheduler-backend/internal/collab"
	"construction-scheduler-backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ActorKey is the context key carrying the acting collaborator
const ActorKey = "actor"

// Actor resolves who is making the request, for change attribution and
// collaboration presence. A bearer token signed with the configured secret
// wins; otherwise the X-Actor-ID / X-Actor-Name headers are taken as-is.
// Requests without either stay anonymous — this is identity extraction, not
// access control.
func Actor(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := collab.Actor{
			ID:   c.GetHeader("X-Actor-ID"),
			Name: c.GetHeader("X-Actor-Name"),
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && cfg.JWTSecret != "" {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString != authHeader {
				if claims := parseActorClaims(tokenString, cfg.JWTSecret); claims != nil {
					actor = *claims
				}
			}
		}

		if actor.ID == "" {
			actor.ID = "anonymous"
		}
		if actor.Name == "" {
			actor.Name = actor.ID
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// ActorFromContext retrieves the actor set by the Actor middleware
func ActorFromContext(c *gin.Context) collab.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(collab.Actor); ok {
			return actor
		}
	}
	return collab.Actor{ID: "anonymous", Name: "anonymous"}
}

func parseActorClaims(tokenString, secret string) *collab.Actor {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	actor := collab.Actor{}
	if sub, err := claims.GetSubject(); err == nil {
		actor.ID = sub
	}
	if name, ok := claims["name"].(string); ok {
		actor.Name = name
	}
	if actor.ID == "" {
		return nil
	}
	return &actor
}

package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"roster-backend/internal/platform/apperr"
)

const (
	CtxUserIDKey = "user_id"
	CtxRoleKey   = "role"
)

// RequireAuth: Authorization: Bearer <token> を検証して context に Identity を詰める
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			apperr.Abort(c, apperr.ErrUnauthenticated("missing Authorization header"))
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apperr.Abort(c, apperr.ErrUnauthenticated("invalid Authorization header"))
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			apperr.Abort(c, apperr.ErrUnauthenticated("empty token"))
			return
		}

		id, err := ParseToken(secret, tokenStr)
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		c.Set(ctxIdentityKey, id)
		c.Set(CtxUserIDKey, id.TrainerID)
		c.Set(CtxRoleKey, string(id.Role))
		c.Next()
	}
}

// ParseToken は HS256 固定で署名・期限を検証し Identity を返す
func ParseToken(secret []byte, tokenStr string) (Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		// alg 固定（none攻撃とか回避）
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || token == nil || !token.Valid {
		return Identity{}, apperr.ErrUnauthenticated("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperr.ErrUnauthenticated("invalid claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, apperr.ErrUnauthenticated("invalid sub")
	}

	roleStr, _ := claims["role"].(string)
	role := Role(roleStr)
	if !role.Valid() {
		return Identity{}, apperr.ErrUnauthenticated("invalid role")
	}

	return Identity{TrainerID: sub, Role: role}, nil
}

// RequireRole: 例) admin のみ許可したい時に追加
func RequireRole(roles ...Role) gin.HandlerFunc {
	roleSet := make(map[Role]struct{})
	for _, r := range roles {
		if r == "" {
			continue
		}
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		id, err := IdentityFrom(c)
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		if _, allowed := roleSet[id.Role]; !allowed {
			apperr.Abort(c, apperr.ErrForbidden("forbidden"))
			return
		}

		c.Next()
	}
}

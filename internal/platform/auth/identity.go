package auth

import (
	"github.com/gin-gonic/gin"

	"roster-backend/internal/platform/apperr"
)

type Role string

const (
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool { return r == RoleTrainer || r == RoleAdmin }

// Identity はリクエストごとの認証済み主体。各サービス操作に値として渡す。
type Identity struct {
	TrainerID string
	Role      Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// RequireAdmin: サービス層での権限チェック
func (i Identity) RequireAdmin() error {
	if i.TrainerID == "" {
		return apperr.ErrUnauthenticated("not authenticated")
	}
	if !i.IsAdmin() {
		return apperr.ErrForbidden("admin role required")
	}
	return nil
}

func (i Identity) RequireAuthenticated() error {
	if i.TrainerID == "" || !i.Role.Valid() {
		return apperr.ErrUnauthenticated("not authenticated")
	}
	return nil
}

const ctxIdentityKey = "identity"

// IdentityFrom は RequireAuth が context に載せた Identity を取り出す
func IdentityFrom(c *gin.Context) (Identity, error) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return Identity{}, apperr.ErrUnauthenticated("not authenticated")
	}
	id, ok := v.(Identity)
	if !ok {
		return Identity{}, apperr.ErrUnauthenticated("not authenticated")
	}
	return id, nil
}

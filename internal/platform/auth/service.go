package auth

import (
	"context"
	"crypto/subtle"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/db"
	"roster-backend/internal/platform/timeutil"
)

type AuthService interface {
	Login(ctx context.Context, id, password string) (string, error)
}

type Service struct {
	store  TrainerStore
	secret []byte
	ttl    time.Duration
	clock  timeutil.Clock
}

func NewService(conn db.DBTX, secret []byte, ttl time.Duration) *Service {
	return &Service{
		store:  NewStore(conn),
		secret: secret,
		ttl:    ttl,
		clock:  timeutil.RealClock{},
	}
}

func (s *Service) Login(ctx context.Context, id, password string) (string, error) {
	if id == "" || password == "" {
		return "", apperr.ErrInvalid("id and password are required")
	}

	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if t == nil || !s.verifyPassword(ctx, t, password) {
		return "", apperr.ErrUnauthenticated("invalid id or password")
	}
	if !t.Role.Valid() {
		return "", apperr.ErrForbidden("account has no usable role")
	}

	return s.IssueToken(Identity{TrainerID: t.ID, Role: t.Role})
}

// verifyPassword: bcrypt ハッシュ済みならそのまま比較。
// 旧データ（平文）は一致した時点で bcrypt に置き換える。
func (s *Service) verifyPassword(ctx context.Context, t *Trainer, password string) bool {
	if strings.HasPrefix(t.PasswordHash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(password)) == nil
	}

	if subtle.ConstantTimeCompare([]byte(t.PasswordHash), []byte(password)) != 1 {
		return false
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[WARN] rehash for %s failed: %v", t.ID, err)
		return true
	}
	if _, err := s.store.UpdatePasswordHash(ctx, t.ID, t.PasswordHash, string(hash)); err != nil {
		log.Printf("[WARN] rehash for %s not saved: %v", t.ID, err)
	}
	return true
}

func (s *Service) IssueToken(id Identity) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  id.TrainerID,
		"role": string(id.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// CreateTrainer はオペレータCLIからの登録用（HTTPには公開しない）
func (s *Service) CreateTrainer(ctx context.Context, id, name string, role Role, password string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" {
		return apperr.ErrInvalid("id and name are required")
	}
	if !role.Valid() {
		return apperr.ErrInvalid("role must be trainer or admin")
	}
	if len(password) < 8 {
		return apperr.ErrInvalid("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = s.store.Create(ctx, &Trainer{
		ID:           id,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	})
	if db.IsDuplicateKey(err) {
		return apperr.ErrConflict("trainer id already exists")
	}
	return err
}

// Package validation は gin のバインディングに独自タグを登録する
package validation

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"roster-backend/internal/platform/ids"
)

var once sync.Once

// Register は `binding:"ulid"` を使えるようにする（多重呼び出し可）
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("ulid", func(fl validator.FieldLevel) bool {
			return ids.Valid(fl.Field().String())
		})
	})
}

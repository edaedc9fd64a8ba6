// Package apperr は全APIで共通のエラーモデル。
// コードは HTTP ステータスと 1:1 に対応し、レスポンスは {"error":{"code","message"}} 形式。
package apperr

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrUnauthenticated(msg string) *APIError {
	return &APIError{Code: CodeUnauthenticated, Message: msg}
}
func ErrForbidden(msg string) *APIError { return &APIError{Code: CodeForbidden, Message: msg} }
func ErrInvalid(msg string) *APIError   { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError  { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError  { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError  { return &APIError{Code: CodeInternal, Message: msg} }

// CodeOf: APIError 以外は INTERNAL 扱い
func CodeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}

func Is(err error, code Code) bool { return err != nil && CodeOf(err) == code }

func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func Body(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// Respond はエラーをステータス付きJSONで返す。
// 想定外のエラーはログにだけ残し、クライアントには汎用メッセージを返す。
func Respond(c *gin.Context, err error) {
	var api *APIError
	if errors.As(err, &api) {
		if api.Code == CodeInternal {
			log.Printf("[ERROR] %s %s request_id=%s: %v", c.Request.Method, c.FullPath(), c.GetString(RequestIDKey), err)
		}
		c.JSON(ToHTTPStatus(err), Body(api.Code, api.Message))
		return
	}
	log.Printf("[ERROR] %s %s request_id=%s: %v", c.Request.Method, c.FullPath(), c.GetString(RequestIDKey), err)
	c.JSON(http.StatusInternalServerError, Body(CodeInternal, "internal server error"))
}

// Abort はミドルウェア用（後続ハンドラを止める）
func Abort(c *gin.Context, err error) {
	Respond(c, err)
	c.Abort()
}

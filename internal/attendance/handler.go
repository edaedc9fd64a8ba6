package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes: r は RequireAuth 済みのグループを渡すこと
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/attendance", h.Act)
	r.GET("/attendance/status", h.Status)
	r.GET("/attendance/history", h.History)
}

// POST /attendance
func (h *Handler) Act(c *gin.Context) {
	who, err := auth.IdentityFrom(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.ErrInvalid("action must be clock_in or clock_out"))
		return
	}

	res, created, err := h.svc.Act(c.Request.Context(), who, req.Action)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /attendance/status
func (h *Handler) Status(c *gin.Context) {
	who, err := auth.IdentityFrom(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	res, err := h.svc.Status(c.Request.Context(), who)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /attendance/history
func (h *Handler) History(c *gin.Context) {
	who, err := auth.IdentityFrom(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	res, err := h.svc.History(c.Request.Context(), who)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

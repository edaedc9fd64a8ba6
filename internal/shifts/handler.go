package shifts

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/auth"
	"roster-backend/internal/platform/validation"
)

type Handler struct{ svc *Service }

// RegisterRoutes: トレーナー向け（RequireAuth 済みのグループ）
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	validation.Register()
	h := &Handler{svc: svc}

	r.POST("/shifts", h.Submit)
	r.GET("/shifts", h.ListMine)
	r.GET("/shifts/:id", h.Get)
}

// RegisterAdminRoutes: 管理者向け（RequireRole(admin) 済みのグループ）
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	validation.Register()
	h := &Handler{svc: svc}

	r.GET("/admin/shifts", h.ListPending)
	r.PATCH("/admin/shifts/:id", h.Decide)
}

// ---------- handlers ----------

// POST /shifts
func (h *Handler) Submit(c *gin.Context) {
	who, err := auth.IdentityFrom(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.ErrInvalid("invalid json"))
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), who, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Header("Location", "/shifts/"+res.ID)
	c.JSON(http.StatusCreated, SubmitResponse{Message: "shift submitted", Shift: res})
}

// GET /shifts
func (h *Handler) ListMine(c *gin.Context) {
	who, err := auth.IdentityFrom(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	res, err := h.svc.ListMine(c.Request.Context(), who)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /shifts/:id
func (h *Handler) Get(c *gin.Context) {
	who, err := auth.IdentityFrom(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	var uri shiftURI
	if err := c.ShouldBindUri(&uri); err != nil {
		apperr.Respond(c, apperr.ErrInvalid("invalid shift id"))
		return
	}
	res, err := h.svc.Get(c.Request.Context(), who, uri.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /admin/shifts
func (h *Handler) ListPending(c *gin.Context) {
	who, err := auth.IdentityFrom(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	res, err := h.svc.ListPending(c.Request.Context(), who)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /admin/shifts/:id
func (h *Handler) Decide(c *gin.Context) {
	who, err := auth.IdentityFrom(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	var uri shiftURI
	if err := c.ShouldBindUri(&uri); err != nil {
		apperr.Respond(c, apperr.ErrInvalid("invalid shift id"))
		return
	}
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.ErrInvalid("status must be confirmed or rejected"))
		return
	}

	res, err := h.svc.Decide(c.Request.Context(), who, uri.ID, req.Status)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

package reporting

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"roster-backend/internal/platform/apperr"
	"roster-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterAdminRoutes: RequireRole(admin) 済みのグループを渡すこと
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/admin/attendances", h.Attendances)
	r.GET("/admin/attendances/export", h.Export)
	r.GET("/admin/shifts/history", h.Shifts)
}

func bindQuery(c *gin.Context) (auth.Identity, RangeQuery, bool) {
	who, err := auth.IdentityFrom(c)
	if err != nil {
		apperr.Respond(c, err)
		return auth.Identity{}, RangeQuery{}, false
	}
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apperr.Respond(c, apperr.ErrInvalid("invalid query"))
		return auth.Identity{}, RangeQuery{}, false
	}
	return who, q, true
}

// GET /admin/attendances
func (h *Handler) Attendances(c *gin.Context) {
	who, q, ok := bindQuery(c)
	if !ok {
		return
	}
	res, err := h.svc.RangeHistory(c.Request.Context(), who, q)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /admin/shifts/history
func (h *Handler) Shifts(c *gin.Context) {
	who, q, ok := bindQuery(c)
	if !ok {
		return
	}
	res, err := h.svc.ShiftHistory(c.Request.Context(), who, q)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /admin/attendances/export
func (h *Handler) Export(c *gin.Context) {
	who, q, ok := bindQuery(c)
	if !ok {
		return
	}
	out, err := h.svc.ExportAttendances(c.Request.Context(), who, q)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

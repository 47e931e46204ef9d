package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/openboard-io/openboard/backend/internal/services"
	"github.com/openboard-io/openboard/backend/pkg/response"
)

// AdminHandler serves the read-only admin surfaces: the audit trail and
// the session list.
type AdminHandler struct {
	auditService *services.AuditService
	authService  *services.AuthService
}

func NewAdminHandler(auditService *services.AuditService, authService *services.AuthService) *AdminHandler {
	return &AdminHandler{
		auditService: auditService,
		authService:  authService,
	}
}

// ListAuditLogs returns a filtered page of audit entries
// GET /api/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	var req services.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.auditService.List(&req)
	if err != nil {
		response.ServerError(c, "failed to list audit logs")
		return
	}

	response.Success(c, resp)
}

// ListSessions returns a page of session records
// GET /api/admin/sessions
func (h *AdminHandler) ListSessions(c *gin.Context) {
	var req services.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.ListSessions(&req)
	if err != nil {
		response.ServerError(c, "failed to list sessions")
		return
	}

	response.Success(c, resp)
}

package handlers

import (
	"github.com/clearview-hq/clearview/backend/internal/services"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SystemHandler exposes server settings and the operation log
type SystemHandler struct {
	configService *services.SystemConfigService
	logService    *services.SystemLogService
	emailService  *services.EmailService
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{
		configService: services.NewSystemConfigService(db),
		logService:    services.NewSystemLogService(db),
		emailService:  services.NewEmailService(db),
	}
}

// GetEmailConfig returns the SMTP settings with the password masked
// GET /api/system/email-config
func (h *SystemHandler) GetEmailConfig(c *gin.Context) {
	response.Success(c, h.configService.GetEmailConfig())
}

// UpdateEmailConfig edits the SMTP settings
// PUT /api/system/email-config
func (h *SystemHandler) UpdateEmailConfig(c *gin.Context) {
	var req services.UpdateEmailConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateEmailConfig(&req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, h.configService.GetEmailConfig())
}

type testEmailRequest struct {
	To string `json:"to" binding:"required,email"`
}

// SendTestEmail checks the SMTP settings end to end
// POST /api/system/email-config/test
func (h *SystemHandler) SendTestEmail(c *gin.Context) {
	var req testEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.emailService.Send([]string{req.To},
		"Clearview test email", "<p>Your outgoing email settings work.</p>"); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "test email sent"})
}

// ListLogs returns the paged operation log
// GET /api/system/logs
func (h *SystemHandler) ListLogs(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListLogModules returns the distinct modules seen in the log
// GET /api/system/logs/modules
func (h *SystemHandler) ListLogModules(c *gin.Context) {
	modules, err := h.logService.GetModules()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, modules)
}

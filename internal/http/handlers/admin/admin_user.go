package admin

import (
	"strings"

	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateUserRoleRequest 调整用户角色请求
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// GetAdminUsers 获取用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("keyword")),
		Role:     strings.ToLower(strings.TrimSpace(c.Query("role"))),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, users, handlershared.BuildPagination(page, pageSize, total))
}

// UpdateAdminUserRole 调整用户角色（customer / staff / admin）
func (h *Handler) UpdateAdminUserRole(c *gin.Context) {
	actorID, ok := getActorID(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAuthService.UpdateRole(actorID, userID, req.Role)
	if err != nil {
		respondServiceError(c, err, userErrorRules)
		return
	}
	response.Success(c, user)
}

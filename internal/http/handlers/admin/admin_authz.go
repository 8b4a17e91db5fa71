package admin

import (
	"strings"

	"github.com/boxmart-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// ListRolePolicies 查询角色策略（含继承角色）
func (h *Handler) ListRolePolicies(c *gin.Context) {
	role := strings.TrimSpace(c.Query("role"))
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.policy_invalid", nil)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, policies)
}

// GrantRolePolicy 为角色授予接口权限
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	payload, ok := bindPolicyPayload(c)
	if !ok {
		return
	}
	if err := h.AuthzService.GrantRolePolicy(payload.Role, payload.Object, payload.Action); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	requestLog(c).Infow("admin_authz_policy_granted",
		"actor_id", c.GetUint("user_id"),
		"role", payload.Role,
		"object", payload.Object,
		"action", payload.Action,
	)
	response.Success(c, payload)
}

// RevokeRolePolicy 撤销角色接口权限
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	payload, ok := bindPolicyPayload(c)
	if !ok {
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(payload.Role, payload.Object, payload.Action); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	requestLog(c).Infow("admin_authz_policy_revoked",
		"actor_id", c.GetUint("user_id"),
		"role", payload.Role,
		"object", payload.Object,
		"action", payload.Action,
	)
	response.Success(c, payload)
}

func bindPolicyPayload(c *gin.Context) (authzPolicyPayload, bool) {
	var payload authzPolicyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, response.CodeBadRequest, "error.policy_invalid", err)
		return payload, false
	}
	payload.Role = strings.TrimSpace(payload.Role)
	payload.Object = strings.TrimSpace(payload.Object)
	payload.Action = strings.TrimSpace(payload.Action)
	if payload.Role == "" || payload.Object == "" || payload.Action == "" {
		respondError(c, response.CodeBadRequest, "error.policy_invalid", nil)
		return payload, false
	}
	return payload, true
}

package admin

import (
	"strings"
	"time"

	handlershared "github.com/boxmart-next/internal/http/handlers/shared"
	"github.com/boxmart-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// getActorID 当前操作人（登录用户）ID，用于审计字段
func getActorID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "user_id", "error.user_id_invalid", "error.user_id_type_invalid")
}

func parseIDParam(c *gin.Context, key string) (uint, bool) {
	id, ok := handlershared.ParsePathUint(c, key)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
	}
	return id, ok
}

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseBoolNullable(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}

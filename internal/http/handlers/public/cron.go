package public

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/liquan-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RunExpireSweep 触发一次证书过期扫描
//
// 供外部 cron 调用，Authorization: Bearer <sweep.secret> 鉴权。
func (h *Handler) RunExpireSweep(c *gin.Context) {
	secret := strings.TrimSpace(h.Config.Sweep.Secret)
	if secret == "" {
		respondError(c, response.CodeUnauthorized, "cron 密钥未配置", nil)
		return
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" ||
		subtle.ConstantTimeCompare([]byte(strings.TrimSpace(parts[1])), []byte(secret)) != 1 {
		respondError(c, response.CodeUnauthorized, "cron 鉴权失败", nil)
		return
	}

	asOf := time.Now()
	if raw := strings.TrimSpace(c.Query("as_of")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			respondError(c, response.CodeBadRequest, "as_of 日期格式无效", err)
			return
		}
		asOf = parsed
	}

	expired, err := h.SweepService.Sweep(asOf)
	if err != nil {
		respondError(c, response.CodeInternal, "过期扫描执行失败", err)
		return
	}
	response.Success(c, gin.H{"expired": expired})
}

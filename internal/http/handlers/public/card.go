package public

import (
	"strconv"

	"github.com/liquan-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreateCardRequest 创建卡片请求
type CreateCardRequest struct {
	Name string `json:"name"`
}

// RenameCardRequest 重命名卡片请求
type RenameCardRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListMyCards 查询当前用户的卡片（附证书统计）
func (h *Handler) ListMyCards(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cards, err := h.CardService.ListMyCards(uid)
	if err != nil {
		respondWithMappedError(c, err, cardCommonErrorRules, response.CodeInternal, "卡片查询失败")
		return
	}
	response.Success(c, gin.H{"cards": cards})
}

// CreateCard 创建卡片
func (h *Handler) CreateCard(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	card, err := h.CardService.CreateCard(uid, req.Name)
	if err != nil {
		respondWithMappedError(c, err, cardCommonErrorRules, response.CodeInternal, "卡片创建失败")
		return
	}
	response.Success(c, card)
}

// RenameCard 重命名卡片
func (h *Handler) RenameCard(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || cardID == 0 {
		respondError(c, response.CodeBadRequest, "卡片参数无效", nil)
		return
	}
	var req RenameCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	card, svcErr := h.CardService.RenameCard(uid, uint(cardID), req.Name)
	if svcErr != nil {
		respondWithMappedError(c, svcErr, cardCommonErrorRules, response.CodeInternal, "卡片更新失败")
		return
	}
	response.Success(c, card)
}

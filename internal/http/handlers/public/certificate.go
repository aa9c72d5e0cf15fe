package public

import (
	"strconv"
	"time"

	"github.com/liquan-next/internal/http/response"
	"github.com/liquan-next/internal/models"
	"github.com/liquan-next/internal/service"

	"github.com/gin-gonic/gin"
)

// IssueCertificateRequest 签发证书请求
type IssueCertificateRequest struct {
	CardID    uint         `json:"card_id" binding:"required"`
	Recipient string       `json:"recipient" binding:"required"`
	Amount    models.Money `json:"amount" binding:"required"`
	IssuedAt  *time.Time   `json:"issued_at"`
	ExpiresAt *time.Time   `json:"expires_at"`
	Note      string       `json:"note"`
}

// RedeemRequest 全额核销请求
type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
	Note string `json:"note"`
}

// RedeemPartialRequest 部分核销请求
type RedeemPartialRequest struct {
	Code   string       `json:"code" binding:"required"`
	Amount models.Money `json:"amount" binding:"required"`
	Note   string       `json:"note"`
}

// IssueCertificate 签发证书
func (h *Handler) IssueCertificate(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req IssueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	cert, err := h.CertificateService.IssueCertificate(uid, service.IssueCertificateInput{
		CardID:    req.CardID,
		Recipient: req.Recipient,
		Amount:    req.Amount,
		IssuedAt:  req.IssuedAt,
		ExpiresAt: req.ExpiresAt,
		Note:      req.Note,
	})
	if err != nil {
		rules := concatMappedHandlerErrors(cardCommonErrorRules, certCommonErrorRules, certRedeemErrorRules)
		respondWithMappedError(c, err, rules, response.CodeInternal, "证书创建失败")
		return
	}
	response.Success(c, cert)
}

// ListCertificates 查询卡片下的证书
func (h *Handler) ListCertificates(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cardID, err := strconv.ParseUint(c.Query("card_id"), 10, 64)
	if err != nil || cardID == 0 {
		respondError(c, response.CodeBadRequest, "卡片参数无效", nil)
		return
	}
	certs, svcErr := h.CertificateService.ListByCard(uid, uint(cardID))
	if svcErr != nil {
		rules := concatMappedHandlerErrors(cardCommonErrorRules, certCommonErrorRules)
		respondWithMappedError(c, svcErr, rules, response.CodeInternal, "证书查询失败")
		return
	}
	response.Success(c, gin.H{"certificates": certs})
}

// GetCertificate 按证书码查询证书
func (h *Handler) GetCertificate(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cert, err := h.CertificateService.GetByCode(uid, c.Param("code"))
	if err != nil {
		respondWithMappedError(c, err, certCommonErrorRules, response.CodeInternal, "证书查询失败")
		return
	}
	response.Success(c, cert)
}

// ListCertificateEvents 查询证书的台账事件
func (h *Handler) ListCertificateEvents(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	events, err := h.CertificateService.ListEvents(uid, c.Param("code"))
	if err != nil {
		respondWithMappedError(c, err, certCommonErrorRules, response.CodeInternal, "证书查询失败")
		return
	}
	response.Success(c, gin.H{"events": events})
}

// RedeemCertificate 全额核销证书
func (h *Handler) RedeemCertificate(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	result, err := h.CertificateService.RedeemFull(uid, req.Code, req.Note)
	if err != nil {
		rules := concatMappedHandlerErrors(certCommonErrorRules, certRedeemErrorRules)
		respondWithMappedError(c, err, rules, response.CodeInternal, "核销失败")
		return
	}
	response.Success(c, result)
}

// RedeemCertificatePartial 部分核销证书
func (h *Handler) RedeemCertificatePartial(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req RedeemPartialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	result, err := h.CertificateService.RedeemPartial(uid, req.Code, req.Amount, req.Note)
	if err != nil {
		rules := concatMappedHandlerErrors(certCommonErrorRules, certRedeemErrorRules)
		respondWithMappedError(c, err, rules, response.CodeInternal, "核销失败")
		return
	}
	response.Success(c, result)
}

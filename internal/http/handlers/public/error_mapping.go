package public

import (
	"errors"

	"github.com/liquan-next/internal/http/response"
	"github.com/liquan-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

// cardCommonErrorRules 卡片操作通用错误映射
var cardCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCardInvalid, code: response.CodeBadRequest, msg: "卡片参数无效"},
	{target: service.ErrCardNotFound, code: response.CodeNotFound, msg: "卡片不存在"},
	{target: service.ErrCardForbidden, code: response.CodeForbidden, msg: "无权访问该卡片"},
}

// certCommonErrorRules 证书查询通用错误映射
var certCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCertInvalid, code: response.CodeBadRequest, msg: "证书参数无效"},
	{target: service.ErrCertNotFound, code: response.CodeNotFound, msg: "证书不存在"},
	{target: service.ErrCertForbidden, code: response.CodeForbidden, msg: "无权访问该证书"},
}

// certRedeemErrorRules 核销路径错误映射
var certRedeemErrorRules = []mappedHandlerError{
	{target: service.ErrCertAlreadyRedeemed, code: response.CodeBadRequest, msg: "证书已核销完毕"},
	{target: service.ErrCertExpired, code: response.CodeBadRequest, msg: "证书已过期"},
	{target: service.ErrInvalidAmount, code: response.CodeBadRequest, msg: "核销金额无效"},
	{target: service.ErrInsufficientBalance, code: response.CodeBadRequest, msg: "证书余额不足"},
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

package service

import "errors"

// 业务哨兵错误，HTTP 层据此映射状态码与文案
var (
	// 认证
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUserCreateFailed   = errors.New("用户创建失败")
	ErrUserFetchFailed    = errors.New("用户查询失败")

	// 卡片
	ErrCardInvalid      = errors.New("卡片参数无效")
	ErrCardNotFound     = errors.New("卡片不存在")
	ErrCardForbidden    = errors.New("无权访问该卡片")
	ErrCardCreateFailed = errors.New("卡片创建失败")
	ErrCardFetchFailed  = errors.New("卡片查询失败")
	ErrCardUpdateFailed = errors.New("卡片更新失败")

	// 证书
	ErrCertInvalid         = errors.New("证书参数无效")
	ErrCertNotFound        = errors.New("证书不存在")
	ErrCertForbidden       = errors.New("无权访问该证书")
	ErrCertAlreadyRedeemed = errors.New("证书已核销完毕")
	ErrCertExpired         = errors.New("证书已过期")
	ErrCertCreateFailed    = errors.New("证书创建失败")
	ErrCertFetchFailed     = errors.New("证书查询失败")
	ErrCertUpdateFailed    = errors.New("证书更新失败")

	// 核销
	ErrInvalidAmount       = errors.New("核销金额无效")
	ErrInsufficientBalance = errors.New("证书余额不足")

	// 过期扫描
	ErrSweepFailed = errors.New("过期扫描执行失败")
)

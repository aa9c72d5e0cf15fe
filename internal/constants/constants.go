package constants

// 证书状态
const (
	CertStatusActive  = "active"
	CertStatusUsed    = "used"
	CertStatusExpired = "expired"
)

// 证书事件类型
const (
	CertEventCreated       = "CREATED"
	CertEventRedeemed      = "REDEEMED"
	CertEventPartialRedeem = "PARTIAL_REDEEM"
	CertEventExpired       = "EXPIRED"
	CertEventCanceled      = "CANCELED"
	CertEventAdjusted      = "ADJUSTED"
)

// 队列任务名称
const (
	QueueDefault        = "default"
	TaskCertExpireSweep = "cert:expire_sweep"
)

// 默认卡片名称（首次访问自动创建）
const DefaultCardName = "我的商户"

package constants

import "time"

// 缓存相关常量
const (
	// DefaultCacheExpiration 默认缓存过期时间
	DefaultCacheExpiration = time.Hour
	// NullCacheExpiration 空值缓存过期时间 (防止缓存穿透)
	NullCacheExpiration = 5 * time.Minute
	// CacheRandomMaxSeconds 缓存随机过期时间最大值(秒) - 防止缓存雪崩
	CacheRandomMaxSeconds = 600 // 10分钟
)

// 分页相关常量
const (
	// DefaultPageSize 默认分页大小
	DefaultPageSize = 10
	// MaxPageSize 最大分页大小
	MaxPageSize = 100
)

// 订阅计费周期类型
const (
	// BillingTypeMonth 月付（激活周期为 31 个自然日）
	BillingTypeMonth = "MONTH"
	// BillingTypeYear 年付（激活周期为 1 个自然年）
	BillingTypeYear = "YEAR"
)

// 激活周期长度
const (
	// MonthActivationDays 月付激活周期天数
	MonthActivationDays = 31
	// ProrationBaseDays 按天折算的计费基数（每月按 30 天折算）
	ProrationBaseDays = 30
)

// 订单支付状态
const (
	// OrderStatusPending 待支付(订单已创建，等待支付)
	OrderStatusPending = "PENDING"
	// OrderStatusPaid 已支付
	OrderStatusPaid = "PAID"
)

// 续费相关常量
const (
	// DefaultRenewalDaysBefore 默认续费订单提前生成天数
	DefaultRenewalDaysBefore = 3
)

// 分布式锁相关常量
const (
	// RenewalLockExpiration 续费订单锁过期时间
	RenewalLockExpiration = 10 * time.Minute
	// RenewalLockRetries 续费订单锁重试次数
	RenewalLockRetries = 1
)

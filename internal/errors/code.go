package errors

import (
	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// 计费服务错误定义
// 错误分类与上游保持一致：NOT_FOUND / BAD_REQUEST / UNAUTHORIZED
// 校验失败、权限失败和存储失败统一以带错误码的 error 返回，
// 由 HTTP 层的 ErrorEncoder 映射为对应的状态码。

// 实体不存在 (404)

// ErrPlanNotFound 套餐不存在
func ErrPlanNotFound() error {
	return kerrors.NotFound("PLAN_NOT_FOUND", "couldn't find plan")
}

// ErrTeamNotFound 团队不存在
func ErrTeamNotFound() error {
	return kerrors.NotFound("TEAM_NOT_FOUND", "couldn't find this team")
}

// ErrSubscriptionNotFound 订阅不存在
func ErrSubscriptionNotFound() error {
	return kerrors.NotFound("SUBSCRIPTION_NOT_FOUND", "subscription not found")
}

// ErrActivationNotFound 激活周期不存在
func ErrActivationNotFound() error {
	return kerrors.NotFound("ACTIVATION_NOT_FOUND", "couldn't find activation")
}

// ErrOrderNotFound 订单不存在
func ErrOrderNotFound() error {
	return kerrors.NotFound("ORDER_NOT_FOUND", "order not found")
}

// 状态/参数错误 (400)

// ErrDowngradeNotAllowed 不允许降级到更低价的套餐
func ErrDowngradeNotAllowed() error {
	return kerrors.BadRequest("DOWNGRADE_NOT_ALLOWED", "can't upgrade to a lower plan")
}

// ErrSubscriptionNotActive 订阅未激活（没有当前激活周期）
func ErrSubscriptionNotActive() error {
	return kerrors.BadRequest("SUBSCRIPTION_NOT_ACTIVE", "only active subscriptions can be upgraded")
}

// ErrInvalidBillingType 无效的计费周期类型
func ErrInvalidBillingType() error {
	return kerrors.BadRequest("INVALID_BILLING_TYPE", `invalid type, only "YEAR" or "MONTH" allowed`)
}

// ErrActivationMismatch 激活周期不属于该订阅
func ErrActivationMismatch() error {
	return kerrors.BadRequest("ACTIVATION_MISMATCH", "activation does not belong to this subscription")
}

// ErrActivationInUse 激活周期正被订阅引用为当前周期，不能换绑
func ErrActivationInUse() error {
	return kerrors.BadRequest("ACTIVATION_IN_USE", "activation is the subscription's current period and can not be reassigned")
}

// ErrInvalidOrderStatus 无效的订单状态
func ErrInvalidOrderStatus() error {
	return kerrors.BadRequest("INVALID_ORDER_STATUS", `invalid status, only "PENDING" or "PAID" allowed`)
}

// ErrOrderAlreadyPaid 订单已支付，状态不可回退
func ErrOrderAlreadyPaid() error {
	return kerrors.BadRequest("ORDER_ALREADY_PAID", "paid order can not transition back to pending")
}

// ErrInvalidPeriod 激活周期起止日期无效
func ErrInvalidPeriod() error {
	return kerrors.BadRequest("INVALID_PERIOD", "end date must be after start date")
}

// ErrInvalidPrice 套餐价格无效
func ErrInvalidPrice() error {
	return kerrors.BadRequest("INVALID_PRICE", "price must be non-negative")
}

// 权限错误 (401/403)

// ErrUnauthenticated 未认证
func ErrUnauthenticated() error {
	return kerrors.Unauthorized("UNAUTHORIZED", "authentication required")
}

// ErrUnauthorized 无权访问资源（非团队所有者）
func ErrUnauthorized() error {
	return kerrors.Unauthorized("UNAUTHORIZED", "unauthorized access")
}

// ErrAdminRequired 需要管理员权限
func ErrAdminRequired() error {
	return kerrors.Unauthorized("UNAUTHORIZED", "unauthorized access")
}

// 存储错误 (500)

// ErrStorage 存储层失败（统一上抛，而不是静默 success=false）
func ErrStorage(err error) error {
	return kerrors.InternalServer("STORAGE_ERROR", "storage operation failed").WithCause(err)
}

// IsNotFound 判断是否为 404 错误
func IsNotFound(err error) bool {
	return kerrors.Code(err) == 404
}

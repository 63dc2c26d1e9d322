package service

import (
	"fmt"

	"xinyuan_tech/billing-service/internal/constants"
)

// 请求/响应 DTO 定义
// 请求实现 Validate() 接口，由 HTTP 中间件统一执行参数校验
// 金额字段入参为 float64，出参统一为 2 位小数的字符串

// MutationReply 通用变更结果
type MutationReply struct {
	Success bool `json:"success"`
}

// PlanInfo 套餐信息
type PlanInfo struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// ListPlansReply .
type ListPlansReply struct {
	Plans []*PlanInfo `json:"plans"`
}

// GetPlanRequest .
type GetPlanRequest struct {
	ID uint64 `json:"id"`
}

func (r *GetPlanRequest) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("id is required")
	}
	return nil
}

// CreatePlanRequest .
type CreatePlanRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (r *CreatePlanRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Price < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	return nil
}

// UpdatePlanRequest .
type UpdatePlanRequest struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (r *UpdatePlanRequest) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Price < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	return nil
}

// UpgradeCostRequest 升级报价查询
type UpgradeCostRequest struct {
	NewPlanID    uint64 `json:"new_plan_id"`
	ActivationID uint64 `json:"activation_id"`
}

func (r *UpgradeCostRequest) Validate() error {
	if r.NewPlanID == 0 {
		return fmt.Errorf("new_plan_id is required")
	}
	if r.ActivationID == 0 {
		return fmt.Errorf("activation_id is required")
	}
	return nil
}

// UpgradeCostReply 升级报价
type UpgradeCostReply struct {
	UpgradeCost   string `json:"upgrade_cost"`
	PricePerDay   string `json:"price_per_day"`
	Deduction     string `json:"deduction"`
	RemainingDays int    `json:"remaining_days"`
}

// ActivationInfo 激活周期信息
type ActivationInfo struct {
	ID             uint64 `json:"id"`
	SubscriptionID uint64 `json:"subscription_id"`
	StartDate      int64  `json:"start_date"`
	EndDate        int64  `json:"end_date"`
}

// SubscriptionInfo 订阅信息（含关联展开）
type SubscriptionInfo struct {
	ID           uint64          `json:"id"`
	PlanID       uint64          `json:"plan_id"`
	TeamID       uint64          `json:"team_id"`
	Type         string          `json:"type"`
	IsActive     bool            `json:"is_active"`
	ActivationID *uint64         `json:"activation_id"`
	Plan         *PlanInfo       `json:"plan,omitempty"`
	Activation   *ActivationInfo `json:"activation,omitempty"`
	CreatedAt    int64           `json:"created_at"`
	UpdatedAt    int64           `json:"updated_at"`
}

// ListSubscriptionsReply .
type ListSubscriptionsReply struct {
	Subscriptions []*SubscriptionInfo `json:"subscriptions"`
}

// GetSubscriptionRequest .
type GetSubscriptionRequest struct {
	ID uint64 `json:"id"`
}

func (r *GetSubscriptionRequest) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("id is required")
	}
	return nil
}

// CreateSubscriptionRequest .
type CreateSubscriptionRequest struct {
	PlanID uint64 `json:"plan_id"`
	TeamID uint64 `json:"team_id"`
	Type   string `json:"type"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if r.PlanID == 0 {
		return fmt.Errorf("plan_id is required")
	}
	if r.TeamID == 0 {
		return fmt.Errorf("team_id is required")
	}
	if r.Type == "" {
		r.Type = constants.BillingTypeMonth
	}
	if r.Type != constants.BillingTypeMonth && r.Type != constants.BillingTypeYear {
		return fmt.Errorf(`type must be "MONTH" or "YEAR"`)
	}
	return nil
}

// UpdateSubscriptionRequest 更新订阅的激活指针与状态
type UpdateSubscriptionRequest struct {
	ID           uint64  `json:"id"`
	ActivationID *uint64 `json:"activation_id"`
	IsActive     bool    `json:"is_active"`
}

func (r *UpdateSubscriptionRequest) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("id is required")
	}
	return nil
}

// UpgradePlanRequest .
type UpgradePlanRequest struct {
	SubscriptionID uint64 `json:"subscription_id"`
	NewPlanID      uint64 `json:"new_plan_id"`
}

func (r *UpgradePlanRequest) Validate() error {
	if r.SubscriptionID == 0 {
		return fmt.Errorf("subscription_id is required")
	}
	if r.NewPlanID == 0 {
		return fmt.Errorf("new_plan_id is required")
	}
	return nil
}

// UpgradePlanReply 升级结果（返回待支付差价订单）
type UpgradePlanReply struct {
	Success    bool   `json:"success"`
	OrderID    uint64 `json:"order_id"`
	DuePayment string `json:"due_payment"`
}

// CreateActivationRequest 起止日期为 unix 秒
type CreateActivationRequest struct {
	SubscriptionID uint64 `json:"subscription_id"`
	StartDate      int64  `json:"start_date"`
	EndDate        int64  `json:"end_date"`
}

func (r *CreateActivationRequest) Validate() error {
	if r.SubscriptionID == 0 {
		return fmt.Errorf("subscription_id is required")
	}
	if r.StartDate == 0 || r.EndDate == 0 {
		return fmt.Errorf("start_date and end_date are required")
	}
	if r.EndDate <= r.StartDate {
		return fmt.Errorf("end_date must be after start_date")
	}
	return nil
}

// UpdateActivationRequest .
type UpdateActivationRequest struct {
	ID             uint64 `json:"id"`
	SubscriptionID uint64 `json:"subscription_id"`
	StartDate      int64  `json:"start_date"`
	EndDate        int64  `json:"end_date"`
}

func (r *UpdateActivationRequest) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("id is required")
	}
	if r.SubscriptionID == 0 {
		return fmt.Errorf("subscription_id is required")
	}
	if r.StartDate == 0 || r.EndDate == 0 {
		return fmt.Errorf("start_date and end_date are required")
	}
	if r.EndDate <= r.StartDate {
		return fmt.Errorf("end_date must be after start_date")
	}
	return nil
}

// CreateOrderRequest 定时任务/外部计费方建单
type CreateOrderRequest struct {
	SubscriptionID uint64  `json:"subscription_id"`
	DuePayment     float64 `json:"due_payment"`
}

func (r *CreateOrderRequest) Validate() error {
	if r.SubscriptionID == 0 {
		return fmt.Errorf("subscription_id is required")
	}
	if r.DuePayment < 0 {
		return fmt.Errorf("due_payment must be non-negative")
	}
	return nil
}

// CreateOrderReply .
type CreateOrderReply struct {
	Success bool   `json:"success"`
	OrderID uint64 `json:"order_id"`
	OrderNo string `json:"order_no"`
}

// UpdateOrderRequest 更新订单状态（PENDING -> PAID 触发激活周期生成）
type UpdateOrderRequest struct {
	ID         uint64  `json:"id"`
	Status     string  `json:"status"`
	DuePayment float64 `json:"due_payment"`
}

func (r *UpdateOrderRequest) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("id is required")
	}
	if r.Status != constants.OrderStatusPending && r.Status != constants.OrderStatusPaid {
		return fmt.Errorf(`status must be "PENDING" or "PAID"`)
	}
	if r.DuePayment < 0 {
		return fmt.Errorf("due_payment must be non-negative")
	}
	return nil
}

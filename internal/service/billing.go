package service

import (
	"context"
	"time"

	"xinyuan_tech/billing-service/internal/biz"

	"github.com/google/wire"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewBillingService)

// BillingService 订阅计费服务
type BillingService struct {
	uc *biz.BillingUsecase
}

// NewBillingService 创建订阅计费服务
func NewBillingService(uc *biz.BillingUsecase) *BillingService {
	return &BillingService{uc: uc}
}

// ---- Plan Catalog ----

func (s *BillingService) ListPlans(ctx context.Context, _ *struct{}) (*ListPlansReply, error) {
	plans, err := s.uc.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	return &ListPlansReply{
		Plans: lo.Map(plans, func(p *biz.Plan, _ int) *PlanInfo { return toPlanInfo(p) }),
	}, nil
}

func (s *BillingService) GetPlan(ctx context.Context, req *GetPlanRequest) (*PlanInfo, error) {
	plan, err := s.uc.GetPlan(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toPlanInfo(plan), nil
}

func (s *BillingService) CreatePlan(ctx context.Context, req *CreatePlanRequest) (*MutationReply, error) {
	if _, err := s.uc.CreatePlan(ctx, req.Name, decimal.NewFromFloat(req.Price)); err != nil {
		return nil, err
	}
	return &MutationReply{Success: true}, nil
}

func (s *BillingService) UpdatePlan(ctx context.Context, req *UpdatePlanRequest) (*MutationReply, error) {
	if _, err := s.uc.UpdatePlan(ctx, req.ID, req.Name, decimal.NewFromFloat(req.Price)); err != nil {
		return nil, err
	}
	return &MutationReply{Success: true}, nil
}

func (s *BillingService) CalculateUpgradeCost(ctx context.Context, req *UpgradeCostRequest) (*UpgradeCostReply, error) {
	quote, err := s.uc.CalculateUpgradeCost(ctx, req.NewPlanID, req.ActivationID)
	if err != nil {
		return nil, err
	}
	return &UpgradeCostReply{
		UpgradeCost:   quote.UpgradeCost.StringFixed(2),
		PricePerDay:   quote.PricePerDay.StringFixed(2),
		Deduction:     quote.Deduction.StringFixed(2),
		RemainingDays: quote.RemainingDays,
	}, nil
}

// ---- Subscriptions ----

func (s *BillingService) ListSubscriptions(ctx context.Context, _ *struct{}) (*ListSubscriptionsReply, error) {
	subs, err := s.uc.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	return &ListSubscriptionsReply{
		Subscriptions: lo.Map(subs, func(sub *biz.Subscription, _ int) *SubscriptionInfo {
			return toSubscriptionInfo(sub)
		}),
	}, nil
}

func (s *BillingService) GetSubscription(ctx context.Context, req *GetSubscriptionRequest) (*SubscriptionInfo, error) {
	sub, err := s.uc.GetSubscription(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toSubscriptionInfo(sub), nil
}

func (s *BillingService) CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*MutationReply, error) {
	if _, err := s.uc.CreateSubscription(ctx, req.PlanID, req.TeamID, req.Type); err != nil {
		return nil, err
	}
	return &MutationReply{Success: true}, nil
}

func (s *BillingService) UpdateSubscription(ctx context.Context, req *UpdateSubscriptionRequest) (*MutationReply, error) {
	if err := s.uc.UpdateSubscription(ctx, req.ID, req.ActivationID, req.IsActive); err != nil {
		return nil, err
	}
	return &MutationReply{Success: true}, nil
}

func (s *BillingService) UpgradePlan(ctx context.Context, req *UpgradePlanRequest) (*UpgradePlanReply, error) {
	order, err := s.uc.UpgradePlan(ctx, req.SubscriptionID, req.NewPlanID)
	if err != nil {
		return nil, err
	}
	return &UpgradePlanReply{
		Success:    true,
		OrderID:    order.ID,
		DuePayment: order.DuePayment.StringFixed(2),
	}, nil
}

// ---- Activations ----

func (s *BillingService) CreateActivation(ctx context.Context, req *CreateActivationRequest) (*MutationReply, error) {
	start := unixDate(req.StartDate)
	end := unixDate(req.EndDate)
	if _, err := s.uc.CreateActivation(ctx, req.SubscriptionID, start, end); err != nil {
		return nil, err
	}
	return &MutationReply{Success: true}, nil
}

func (s *BillingService) UpdateActivation(ctx context.Context, req *UpdateActivationRequest) (*MutationReply, error) {
	start := unixDate(req.StartDate)
	end := unixDate(req.EndDate)
	if err := s.uc.UpdateActivation(ctx, req.ID, req.SubscriptionID, start, end); err != nil {
		return nil, err
	}
	return &MutationReply{Success: true}, nil
}

// ---- Orders ----

func (s *BillingService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderReply, error) {
	order, err := s.uc.CreateOrder(ctx, req.SubscriptionID, decimal.NewFromFloat(req.DuePayment))
	if err != nil {
		return nil, err
	}
	return &CreateOrderReply{
		Success: true,
		OrderID: order.ID,
		OrderNo: order.OrderNo,
	}, nil
}

func (s *BillingService) UpdateOrder(ctx context.Context, req *UpdateOrderRequest) (*MutationReply, error) {
	if err := s.uc.UpdateOrder(ctx, req.ID, req.Status, decimal.NewFromFloat(req.DuePayment)); err != nil {
		return nil, err
	}
	return &MutationReply{Success: true}, nil
}

// ---- 转换 ----

func toPlanInfo(p *biz.Plan) *PlanInfo {
	return &PlanInfo{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		CreatedAt: p.CreatedAt.Unix(),
		UpdatedAt: p.UpdatedAt.Unix(),
	}
}

func toActivationInfo(a *biz.Activation) *ActivationInfo {
	return &ActivationInfo{
		ID:             a.ID,
		SubscriptionID: a.SubscriptionID,
		StartDate:      a.StartDate.Unix(),
		EndDate:        a.EndDate.Unix(),
	}
}

func toSubscriptionInfo(sub *biz.Subscription) *SubscriptionInfo {
	info := &SubscriptionInfo{
		ID:           sub.ID,
		PlanID:       sub.PlanID,
		TeamID:       sub.TeamID,
		Type:         sub.Type,
		IsActive:     sub.IsActive,
		ActivationID: sub.ActivationID,
		CreatedAt:    sub.CreatedAt.Unix(),
		UpdatedAt:    sub.UpdatedAt.Unix(),
	}
	if sub.Plan != nil {
		info.Plan = toPlanInfo(sub.Plan)
	}
	if sub.Activation != nil {
		info.Activation = toActivationInfo(sub.Activation)
	}
	return info
}

func unixDate(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

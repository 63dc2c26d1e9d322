package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/transport/http"
)

// RegisterHTTPRoutes 注册业务路由
// 没有引入 IDL 生成代码，路由与 DTO 绑定在此手工完成，
// 处理器统一走 ctx.Middleware 以应用服务端中间件链
func RegisterHTTPRoutes(srv *http.Server, s *BillingService) {
	r := srv.Route("/v1")

	// 套餐
	r.GET("/plans", listPlansHandler(s))
	r.GET("/plans/upgrade-cost", upgradeCostHandler(s)) // 需在 /plans/{id} 之前注册
	r.GET("/plans/{id}", getPlanHandler(s))
	r.POST("/plans", createPlanHandler(s))
	r.PUT("/plans/{id}", updatePlanHandler(s))

	// 订阅
	r.GET("/subscriptions", listSubscriptionsHandler(s))
	r.GET("/subscriptions/{id}", getSubscriptionHandler(s))
	r.POST("/subscriptions", createSubscriptionHandler(s))
	r.PUT("/subscriptions/{id}", updateSubscriptionHandler(s))
	r.POST("/subscriptions/{subscription_id}/upgrade", upgradePlanHandler(s))

	// 激活周期
	r.POST("/activations", createActivationHandler(s))
	r.PUT("/activations/{id}", updateActivationHandler(s))

	// 订单
	r.POST("/orders", createOrderHandler(s))
	r.PUT("/orders/{id}", updateOrderHandler(s))
}

func listPlansHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return s.ListPlans(c, nil)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func getPlanHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in GetPlanRequest
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.GetPlan(c, req.(*GetPlanRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func createPlanHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in CreatePlanRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.CreatePlan(c, req.(*CreatePlanRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func updatePlanHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in UpdatePlanRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.UpdatePlan(c, req.(*UpdatePlanRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func upgradeCostHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in UpgradeCostRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.CalculateUpgradeCost(c, req.(*UpgradeCostRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func listSubscriptionsHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
			return s.ListSubscriptions(c, nil)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func getSubscriptionHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in GetSubscriptionRequest
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.GetSubscription(c, req.(*GetSubscriptionRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func createSubscriptionHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in CreateSubscriptionRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.CreateSubscription(c, req.(*CreateSubscriptionRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func updateSubscriptionHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in UpdateSubscriptionRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.UpdateSubscription(c, req.(*UpdateSubscriptionRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func upgradePlanHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in UpgradePlanRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.UpgradePlan(c, req.(*UpgradePlanRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func createActivationHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in CreateActivationRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.CreateActivation(c, req.(*CreateActivationRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func updateActivationHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in UpdateActivationRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.UpdateActivation(c, req.(*UpdateActivationRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func createOrderHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in CreateOrderRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.CreateOrder(c, req.(*CreateOrderRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func updateOrderHandler(s *BillingService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in UpdateOrderRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.UpdateOrder(c, req.(*UpdateOrderRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

package service

import (
	"testing"

	"xinyuan_tech/billing-service/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validator 与 HTTP 校验中间件约定的接口
type validator interface {
	Validate() error
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     validator
		wantErr bool
	}{
		{"get plan ok", &GetPlanRequest{ID: 1}, false},
		{"get plan missing id", &GetPlanRequest{}, true},

		{"create plan ok", &CreatePlanRequest{Name: "Basic", Price: 30}, false},
		{"create plan free ok", &CreatePlanRequest{Name: "Free", Price: 0}, false},
		{"create plan missing name", &CreatePlanRequest{Price: 30}, true},
		{"create plan negative price", &CreatePlanRequest{Name: "Basic", Price: -1}, true},

		{"update plan ok", &UpdatePlanRequest{ID: 1, Name: "Basic", Price: 30}, false},
		{"update plan missing id", &UpdatePlanRequest{Name: "Basic", Price: 30}, true},

		{"upgrade cost ok", &UpgradeCostRequest{NewPlanID: 2, ActivationID: 1}, false},
		{"upgrade cost missing activation", &UpgradeCostRequest{NewPlanID: 2}, true},

		{"create subscription ok", &CreateSubscriptionRequest{PlanID: 1, TeamID: 1, Type: "YEAR"}, false},
		{"create subscription bad type", &CreateSubscriptionRequest{PlanID: 1, TeamID: 1, Type: "WEEK"}, true},
		{"create subscription missing team", &CreateSubscriptionRequest{PlanID: 1}, true},

		{"update subscription ok", &UpdateSubscriptionRequest{ID: 1}, false},
		{"update subscription missing id", &UpdateSubscriptionRequest{}, true},

		{"upgrade plan ok", &UpgradePlanRequest{SubscriptionID: 1, NewPlanID: 2}, false},
		{"upgrade plan missing plan", &UpgradePlanRequest{SubscriptionID: 1}, true},

		{"create activation ok", &CreateActivationRequest{SubscriptionID: 1, StartDate: 100, EndDate: 200}, false},
		{"create activation inverted period", &CreateActivationRequest{SubscriptionID: 1, StartDate: 200, EndDate: 100}, true},
		{"create activation missing dates", &CreateActivationRequest{SubscriptionID: 1}, true},

		{"update activation ok", &UpdateActivationRequest{ID: 1, SubscriptionID: 1, StartDate: 100, EndDate: 200}, false},
		{"update activation missing id", &UpdateActivationRequest{SubscriptionID: 1, StartDate: 100, EndDate: 200}, true},

		{"create order ok", &CreateOrderRequest{SubscriptionID: 1, DuePayment: 30}, false},
		{"create order negative amount", &CreateOrderRequest{SubscriptionID: 1, DuePayment: -1}, true},

		{"update order ok", &UpdateOrderRequest{ID: 1, Status: constants.OrderStatusPaid, DuePayment: 30}, false},
		{"update order bad status", &UpdateOrderRequest{ID: 1, Status: "CANCELLED"}, true},
		{"update order missing id", &UpdateOrderRequest{Status: constants.OrderStatusPaid}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateSubscriptionRequest_DefaultType(t *testing.T) {
	req := &CreateSubscriptionRequest{PlanID: 1, TeamID: 1}
	require.NoError(t, req.Validate())
	assert.Equal(t, constants.BillingTypeMonth, req.Type)
}

package biz

import (
	"context"
	"testing"
	"time"

	"xinyuan_tech/billing-service/internal/constants"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// seedTeamAndPlans 基础数据：两个套餐 + uid=7 的团队
func seedTeamAndPlans(f *fakeStore) {
	f.plans[1] = &Plan{ID: 1, Name: "Basic", Price: decimal.NewFromInt(30)}
	f.plans[2] = &Plan{ID: 2, Name: "Pro", Price: decimal.NewFromInt(60)}
	f.teams[1] = &Team{ID: 1, Name: "acme", UID: 7}
	f.nextID = 10
}

// seedActiveSubscription 绑定 Basic 套餐的月付订阅，当前周期还剩 10 天
func seedActiveSubscription(f *fakeStore) (subID, actID uint64) {
	seedTeamAndPlans(f)
	actID = 100
	subID = 200
	f.acts[actID] = &Activation{
		ID:             actID,
		SubscriptionID: subID,
		StartDate:      testNow.AddDate(0, 0, -21),
		EndDate:        testNow.AddDate(0, 0, 10),
	}
	f.subs[subID] = &Subscription{
		ID:           subID,
		PlanID:       1,
		TeamID:       1,
		Type:         constants.BillingTypeMonth,
		IsActive:     true,
		ActivationID: &actID,
	}
	f.nextID = 300
	return subID, actID
}

func TestCreateSubscription(t *testing.T) {
	t.Run("owner creates inactive subscription", func(t *testing.T) {
		f := newFakeStore(testNow)
		seedTeamAndPlans(f)
		uc := newTestUsecase(t, f)

		sub, err := uc.CreateSubscription(ctxAsUser(7), 1, 1, constants.BillingTypeYear)
		require.NoError(t, err)
		require.NotZero(t, sub.ID)
		assert.False(t, sub.IsActive)
		assert.Nil(t, sub.ActivationID)
		assert.Equal(t, constants.BillingTypeYear, sub.Type)

		stored := f.subs[sub.ID]
		require.NotNil(t, stored)
		assert.Equal(t, uint64(1), stored.PlanID)
	})

	t.Run("admin can create for any team", func(t *testing.T) {
		f := newFakeStore(testNow)
		seedTeamAndPlans(f)
		uc := newTestUsecase(t, f)

		_, err := uc.CreateSubscription(ctxAsAdmin(99), 1, 1, constants.BillingTypeMonth)
		require.NoError(t, err)
	})

	t.Run("non owner rejected", func(t *testing.T) {
		f := newFakeStore(testNow)
		seedTeamAndPlans(f)
		uc := newTestUsecase(t, f)

		_, err := uc.CreateSubscription(ctxAsUser(9), 1, 1, constants.BillingTypeMonth)
		requireCode(t, err, 401)
	})

	t.Run("invalid billing type", func(t *testing.T) {
		f := newFakeStore(testNow)
		seedTeamAndPlans(f)
		uc := newTestUsecase(t, f)

		_, err := uc.CreateSubscription(ctxAsUser(7), 1, 1, "WEEK")
		requireCode(t, err, 400)
	})

	t.Run("unknown team", func(t *testing.T) {
		f := newFakeStore(testNow)
		seedTeamAndPlans(f)
		uc := newTestUsecase(t, f)

		_, err := uc.CreateSubscription(ctxAsUser(7), 1, 42, constants.BillingTypeMonth)
		requireCode(t, err, 404)
		assert.Equal(t, "TEAM_NOT_FOUND", kerrors.Reason(err))
	})

	t.Run("unknown plan", func(t *testing.T) {
		f := newFakeStore(testNow)
		seedTeamAndPlans(f)
		uc := newTestUsecase(t, f)

		_, err := uc.CreateSubscription(ctxAsUser(7), 42, 1, constants.BillingTypeMonth)
		requireCode(t, err, 404)
		assert.Equal(t, "PLAN_NOT_FOUND", kerrors.Reason(err))
	})
}

func TestUpdateSubscription(t *testing.T) {
	t.Run("relink to own activation", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		other := &Activation{ID: 101, SubscriptionID: subID, StartDate: testNow, EndDate: testNow.AddDate(0, 1, 0)}
		f.acts[other.ID] = other
		uc := newTestUsecase(t, f)

		err := uc.UpdateSubscription(ctxAsUser(7), subID, &other.ID, true)
		require.NoError(t, err)
		require.NotNil(t, f.subs[subID].ActivationID)
		assert.Equal(t, other.ID, *f.subs[subID].ActivationID)
	})

	t.Run("clear activation pointer", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		uc := newTestUsecase(t, f)

		err := uc.UpdateSubscription(ctxAsUser(7), subID, nil, false)
		require.NoError(t, err)
		assert.Nil(t, f.subs[subID].ActivationID)
		assert.False(t, f.subs[subID].IsActive)
	})

	t.Run("foreign activation rejected", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		foreign := &Activation{ID: 102, SubscriptionID: 999, StartDate: testNow, EndDate: testNow.AddDate(0, 1, 0)}
		f.acts[foreign.ID] = foreign
		uc := newTestUsecase(t, f)

		err := uc.UpdateSubscription(ctxAsUser(7), subID, &foreign.ID, true)
		requireCode(t, err, 400)
		assert.Equal(t, "ACTIVATION_MISMATCH", kerrors.Reason(err))
	})

	t.Run("non owner rejected", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		uc := newTestUsecase(t, f)

		err := uc.UpdateSubscription(ctxAsUser(9), subID, nil, false)
		requireCode(t, err, 401)
	})
}

func TestPlanAdminGating(t *testing.T) {
	t.Run("create requires admin", func(t *testing.T) {
		f := newFakeStore(testNow)
		uc := newTestUsecase(t, f)

		_, err := uc.CreatePlan(ctxAsUser(7), "Basic", decimal.NewFromInt(30))
		requireCode(t, err, 401)
	})

	t.Run("admin creates and updates", func(t *testing.T) {
		f := newFakeStore(testNow)
		uc := newTestUsecase(t, f)

		plan, err := uc.CreatePlan(ctxAsAdmin(1), "Basic", decimal.NewFromInt(30))
		require.NoError(t, err)
		require.NotZero(t, plan.ID)

		updated, err := uc.UpdatePlan(ctxAsAdmin(1), plan.ID, "Basic+", decimal.NewFromInt(35))
		require.NoError(t, err)
		assert.Equal(t, "Basic+", updated.Name)
		assert.Equal(t, "35.00", f.plans[plan.ID].Price.StringFixed(2))
	})

	t.Run("negative price rejected", func(t *testing.T) {
		f := newFakeStore(testNow)
		uc := newTestUsecase(t, f)

		_, err := uc.CreatePlan(ctxAsAdmin(1), "Broken", decimal.NewFromInt(-1))
		requireCode(t, err, 400)
	})

	t.Run("update missing plan", func(t *testing.T) {
		f := newFakeStore(testNow)
		uc := newTestUsecase(t, f)

		_, err := uc.UpdatePlan(ctxAsAdmin(1), 42, "Ghost", decimal.NewFromInt(10))
		requireCode(t, err, 404)
	})
}

func TestCalculateUpgradeCostUsecase(t *testing.T) {
	f := newFakeStore(testNow)
	_, actID := seedActiveSubscription(f)
	uc := newTestUsecase(t, f)

	quote, err := uc.CalculateUpgradeCost(context.Background(), 2, actID)
	require.NoError(t, err)
	assert.Equal(t, 10, quote.RemainingDays)
	assert.Equal(t, "1.00", quote.PricePerDay.StringFixed(2))
	assert.Equal(t, "10.00", quote.Deduction.StringFixed(2))
	assert.Equal(t, "50.00", quote.UpgradeCost.StringFixed(2))

	_, err = uc.CalculateUpgradeCost(context.Background(), 2, 999)
	requireCode(t, err, 404)
}

func TestUpgradePlan(t *testing.T) {
	t.Run("upgrade rebinds plan and issues pending order", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		uc := newTestUsecase(t, f)

		order, err := uc.UpgradePlan(ctxAsUser(7), subID, 2)
		require.NoError(t, err)
		assert.Equal(t, constants.OrderStatusPending, order.Status)
		assert.Equal(t, "50.00", order.DuePayment.StringFixed(2))
		assert.NotEmpty(t, order.OrderNo)

		sub := f.subs[subID]
		assert.Equal(t, uint64(2), sub.PlanID)
		assert.Nil(t, sub.ActivationID)
		assert.False(t, sub.IsActive)
	})

	t.Run("unprovisioned subscription can not upgrade", func(t *testing.T) {
		f := newFakeStore(testNow)
		seedTeamAndPlans(f)
		f.subs[200] = &Subscription{ID: 200, PlanID: 1, TeamID: 1, Type: constants.BillingTypeMonth}
		uc := newTestUsecase(t, f)

		_, err := uc.UpgradePlan(ctxAsUser(7), 200, 2)
		requireCode(t, err, 400)
		assert.Equal(t, "SUBSCRIPTION_NOT_ACTIVE", kerrors.Reason(err))
	})

	t.Run("downgrade rejected before any write", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, actID := seedActiveSubscription(f)
		f.plans[3] = &Plan{ID: 3, Name: "Free", Price: decimal.Zero}
		uc := newTestUsecase(t, f)

		_, err := uc.UpgradePlan(ctxAsUser(7), subID, 3)
		requireCode(t, err, 400)
		assert.Equal(t, "DOWNGRADE_NOT_ALLOWED", kerrors.Reason(err))

		// 订阅未被改动
		sub := f.subs[subID]
		assert.Equal(t, uint64(1), sub.PlanID)
		require.NotNil(t, sub.ActivationID)
		assert.Equal(t, actID, *sub.ActivationID)
		assert.Empty(t, f.orders)
	})

	t.Run("non owner rejected", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		uc := newTestUsecase(t, f)

		_, err := uc.UpgradePlan(ctxAsUser(9), subID, 2)
		requireCode(t, err, 401)
	})
}

func TestCreateOrder(t *testing.T) {
	f := newFakeStore(testNow)
	subID, _ := seedActiveSubscription(f)
	uc := newTestUsecase(t, f)

	order, err := uc.CreateOrder(context.Background(), subID, decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.OrderNo)

	_, err = uc.CreateOrder(context.Background(), 999, decimal.NewFromInt(30))
	requireCode(t, err, 404)

	_, err = uc.CreateOrder(context.Background(), subID, decimal.NewFromInt(-1))
	requireCode(t, err, 400)
}

func TestUpdateOrder(t *testing.T) {
	newPaidScenario := func(t *testing.T) (*fakeStore, *BillingUsecase, uint64, uint64) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		order := &Order{ID: 400, OrderNo: "ord-400", SubscriptionID: subID, DuePayment: decimal.NewFromInt(30), Status: constants.OrderStatusPending}
		f.orders[order.ID] = order
		return f, newTestUsecase(t, f), subID, order.ID
	}

	t.Run("mark paid creates activation and relinks", func(t *testing.T) {
		f, uc, subID, orderID := newPaidScenario(t)

		err := uc.UpdateOrder(ctxAsUser(7), orderID, constants.OrderStatusPaid, decimal.NewFromInt(30))
		require.NoError(t, err)
		assert.Equal(t, constants.OrderStatusPaid, f.orders[orderID].Status)

		sub := f.subs[subID]
		require.NotNil(t, sub.ActivationID)
		assert.True(t, sub.IsActive)

		act := f.acts[*sub.ActivationID]
		require.NotNil(t, act)
		assert.Equal(t, subID, act.SubscriptionID)
		wantStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, wantStart, act.StartDate)
		assert.Equal(t, wantStart.AddDate(0, 0, constants.MonthActivationDays), act.EndDate)
	})

	t.Run("repeated paid is idempotent", func(t *testing.T) {
		f, uc, subID, orderID := newPaidScenario(t)

		require.NoError(t, uc.UpdateOrder(ctxAsUser(7), orderID, constants.OrderStatusPaid, decimal.NewFromInt(30)))
		firstAct := *f.subs[subID].ActivationID
		actCount := len(f.acts)

		require.NoError(t, uc.UpdateOrder(ctxAsUser(7), orderID, constants.OrderStatusPaid, decimal.NewFromInt(30)))
		assert.Equal(t, firstAct, *f.subs[subID].ActivationID)
		assert.Equal(t, actCount, len(f.acts))
	})

	t.Run("paid order can not go back to pending", func(t *testing.T) {
		_, uc, _, orderID := newPaidScenario(t)

		require.NoError(t, uc.UpdateOrder(ctxAsUser(7), orderID, constants.OrderStatusPaid, decimal.NewFromInt(30)))
		err := uc.UpdateOrder(ctxAsUser(7), orderID, constants.OrderStatusPending, decimal.NewFromInt(30))
		requireCode(t, err, 400)
		assert.Equal(t, "ORDER_ALREADY_PAID", kerrors.Reason(err))
	})

	t.Run("invalid status", func(t *testing.T) {
		_, uc, _, orderID := newPaidScenario(t)

		err := uc.UpdateOrder(ctxAsUser(7), orderID, "CANCELLED", decimal.NewFromInt(30))
		requireCode(t, err, 400)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, uc, _, _ := newPaidScenario(t)

		err := uc.UpdateOrder(ctxAsUser(7), 999, constants.OrderStatusPaid, decimal.NewFromInt(30))
		requireCode(t, err, 404)
	})

	t.Run("non owner rejected", func(t *testing.T) {
		_, uc, _, orderID := newPaidScenario(t)

		err := uc.UpdateOrder(ctxAsUser(9), orderID, constants.OrderStatusPaid, decimal.NewFromInt(30))
		requireCode(t, err, 401)
	})
}

func TestActivationOperations(t *testing.T) {
	t.Run("create guarded by ownership", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		uc := newTestUsecase(t, f)

		act, err := uc.CreateActivation(ctxAsUser(7), subID, testNow, testNow.AddDate(0, 1, 0))
		require.NoError(t, err)
		require.NotZero(t, act.ID)

		_, err = uc.CreateActivation(ctxAsUser(9), subID, testNow, testNow.AddDate(0, 1, 0))
		requireCode(t, err, 401)
	})

	t.Run("end must be after start", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		uc := newTestUsecase(t, f)

		_, err := uc.CreateActivation(ctxAsUser(7), subID, testNow, testNow)
		requireCode(t, err, 400)
	})

	t.Run("update rewrites period", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, actID := seedActiveSubscription(f)
		uc := newTestUsecase(t, f)

		newEnd := testNow.AddDate(0, 2, 0)
		err := uc.UpdateActivation(ctxAsUser(7), actID, subID, testNow, newEnd)
		require.NoError(t, err)
		assert.Equal(t, newEnd, f.acts[actID].EndDate)
	})

	t.Run("current period can not be reassigned", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, actID := seedActiveSubscription(f)
		uc := newTestUsecase(t, f)

		err := uc.UpdateActivation(ctxAsUser(7), actID, 999, testNow, testNow.AddDate(0, 1, 0))
		requireCode(t, err, 400)
		assert.Equal(t, "ACTIVATION_IN_USE", kerrors.Reason(err))

		// 周期与当前指针均未被改动
		assert.Equal(t, subID, f.acts[actID].SubscriptionID)
		require.NotNil(t, f.subs[subID].ActivationID)
		assert.Equal(t, actID, *f.subs[subID].ActivationID)
	})

	t.Run("historical period reassigns to owned subscription", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		history := &Activation{ID: 101, SubscriptionID: subID, StartDate: testNow.AddDate(0, -2, 0), EndDate: testNow.AddDate(0, -1, 0)}
		f.acts[history.ID] = history
		f.subs[201] = &Subscription{ID: 201, PlanID: 1, TeamID: 1, Type: constants.BillingTypeMonth}
		uc := newTestUsecase(t, f)

		err := uc.UpdateActivation(ctxAsUser(7), history.ID, 201, history.StartDate, history.EndDate)
		require.NoError(t, err)
		assert.Equal(t, uint64(201), f.acts[history.ID].SubscriptionID)
	})

	t.Run("reassign to missing subscription rejected", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		history := &Activation{ID: 101, SubscriptionID: subID, StartDate: testNow.AddDate(0, -2, 0), EndDate: testNow.AddDate(0, -1, 0)}
		f.acts[history.ID] = history
		uc := newTestUsecase(t, f)

		err := uc.UpdateActivation(ctxAsUser(7), history.ID, 999, history.StartDate, history.EndDate)
		requireCode(t, err, 404)
		assert.Equal(t, subID, f.acts[history.ID].SubscriptionID)
	})

	t.Run("reassign to foreign subscription rejected", func(t *testing.T) {
		f := newFakeStore(testNow)
		subID, _ := seedActiveSubscription(f)
		history := &Activation{ID: 101, SubscriptionID: subID, StartDate: testNow.AddDate(0, -2, 0), EndDate: testNow.AddDate(0, -1, 0)}
		f.acts[history.ID] = history
		f.teams[2] = &Team{ID: 2, Name: "other", UID: 8}
		f.subs[201] = &Subscription{ID: 201, PlanID: 1, TeamID: 2, Type: constants.BillingTypeMonth}
		uc := newTestUsecase(t, f)

		err := uc.UpdateActivation(ctxAsUser(7), history.ID, 201, history.StartDate, history.EndDate)
		requireCode(t, err, 401)
		assert.Equal(t, subID, f.acts[history.ID].SubscriptionID)
	})
}

func TestCreateRenewalOrders(t *testing.T) {
	f := newFakeStore(testNow)
	seedTeamAndPlans(f)

	addSub := func(id, actID uint64, end time.Time) {
		f.acts[actID] = &Activation{ID: actID, SubscriptionID: id, StartDate: end.AddDate(0, -1, 0), EndDate: end}
		f.subs[id] = &Subscription{ID: id, PlanID: 1, TeamID: 1, Type: constants.BillingTypeMonth, IsActive: true, ActivationID: &actID}
	}
	addSub(201, 101, testNow.AddDate(0, 0, 2)) // 两天后到期，应建单
	addSub(202, 102, testNow.AddDate(0, 0, 2)) // 到期但已有待支付订单，跳过
	addSub(203, 103, testNow.AddDate(0, 0, 9)) // 到期日在窗口之外
	f.orders[500] = &Order{ID: 500, OrderNo: "ord-500", SubscriptionID: 202, DuePayment: decimal.NewFromInt(30), Status: constants.OrderStatusPending}
	f.nextID = 600

	uc := newTestUsecase(t, f)
	created, results, err := uc.CreateRenewalOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, results, 2)

	byID := map[uint64]*RenewalResult{}
	for _, r := range results {
		byID[r.SubscriptionID] = r
	}
	require.Contains(t, byID, uint64(201))
	assert.True(t, byID[201].Success)
	assert.NotZero(t, byID[201].OrderID)
	assert.Equal(t, "30.00", f.orders[byID[201].OrderID].DuePayment.StringFixed(2))

	require.Contains(t, byID, uint64(202))
	assert.True(t, byID[202].Success)
	assert.Zero(t, byID[202].OrderID)
}

func TestDeactivateExpiredSubscriptions(t *testing.T) {
	f := newFakeStore(testNow)
	seedTeamAndPlans(f)

	expiredAct := uint64(101)
	f.acts[expiredAct] = &Activation{ID: expiredAct, SubscriptionID: 201, StartDate: testNow.AddDate(0, -2, 0), EndDate: testNow.AddDate(0, 0, -1)}
	f.subs[201] = &Subscription{ID: 201, PlanID: 1, TeamID: 1, Type: constants.BillingTypeMonth, IsActive: true, ActivationID: &expiredAct}

	liveAct := uint64(102)
	f.acts[liveAct] = &Activation{ID: liveAct, SubscriptionID: 202, StartDate: testNow, EndDate: testNow.AddDate(0, 1, 0)}
	f.subs[202] = &Subscription{ID: 202, PlanID: 1, TeamID: 1, Type: constants.BillingTypeMonth, IsActive: true, ActivationID: &liveAct}

	uc := newTestUsecase(t, f)
	count, ids, err := uc.DeactivateExpiredSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []uint64{201}, ids)

	assert.False(t, f.subs[201].IsActive)
	// 过期状态保留激活指针
	require.NotNil(t, f.subs[201].ActivationID)
	assert.True(t, f.subs[202].IsActive)
}

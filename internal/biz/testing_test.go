package biz

import (
	"context"
	"io"
	"testing"
	"time"

	"xinyuan_tech/billing-service/internal/auth"
	"xinyuan_tech/billing-service/internal/conf"
	"xinyuan_tech/billing-service/internal/constants"

	"github.com/alicebob/miniredis/v2"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeStore 内存仓库，实现 biz 层的全部仓库接口与事务接口
type fakeStore struct {
	plans  map[uint64]*Plan
	teams  map[uint64]*Team
	subs   map[uint64]*Subscription
	acts   map[uint64]*Activation
	orders map[uint64]*Order
	nextID uint64

	now time.Time
}

func newFakeStore(now time.Time) *fakeStore {
	return &fakeStore{
		plans:  map[uint64]*Plan{},
		teams:  map[uint64]*Team{},
		subs:   map[uint64]*Subscription{},
		acts:   map[uint64]*Activation{},
		orders: map[uint64]*Order{},
		now:    now,
	}
}

func (f *fakeStore) id() uint64 {
	f.nextID++
	return f.nextID
}

// Exec 直通执行（内存实现无真实事务）
func (f *fakeStore) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---- PlanRepo ----

func (f *fakeStore) ListPlans(ctx context.Context) ([]*Plan, error) {
	out := make([]*Plan, 0, len(f.plans))
	for _, p := range f.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) GetPlan(ctx context.Context, id uint64) (*Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CreatePlan(ctx context.Context, plan *Plan) error {
	plan.ID = f.id()
	cp := *plan
	f.plans[plan.ID] = &cp
	return nil
}

func (f *fakeStore) UpdatePlan(ctx context.Context, plan *Plan) error {
	cp := *plan
	f.plans[plan.ID] = &cp
	return nil
}

// ---- TeamRepo ----

func (f *fakeStore) GetTeam(ctx context.Context, id uint64) (*Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// ---- SubscriptionRepo ----

func (f *fakeStore) GetSubscription(ctx context.Context, id uint64) (*Subscription, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Plan, _ = f.GetPlan(ctx, s.PlanID)
	cp.Team, _ = f.GetTeam(ctx, s.TeamID)
	if s.ActivationID != nil {
		if a, ok := f.acts[*s.ActivationID]; ok {
			ca := *a
			cp.Activation = &ca
		}
	}
	return &cp, nil
}

func (f *fakeStore) ListSubscriptions(ctx context.Context) ([]*Subscription, error) {
	out := make([]*Subscription, 0, len(f.subs))
	for id := range f.subs {
		s, _ := f.GetSubscription(ctx, id)
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) CreateSubscription(ctx context.Context, sub *Subscription) error {
	sub.ID = f.id()
	cp := *sub
	cp.Plan, cp.Team, cp.Activation = nil, nil, nil
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeStore) SaveSubscription(ctx context.Context, sub *Subscription) error {
	cp := *sub
	cp.Plan, cp.Team, cp.Activation = nil, nil, nil
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeStore) ListExpiringSubscriptions(ctx context.Context, daysBeforeExpiry int) ([]*Subscription, error) {
	until := f.now.AddDate(0, 0, daysBeforeExpiry)
	var out []*Subscription
	for id, s := range f.subs {
		if !s.IsActive || s.ActivationID == nil {
			continue
		}
		a, ok := f.acts[*s.ActivationID]
		if !ok {
			continue
		}
		if a.EndDate.After(f.now) && !a.EndDate.After(until) {
			sub, _ := f.GetSubscription(ctx, id)
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeStore) DeactivateExpiredSubscriptions(ctx context.Context) (int, []uint64, error) {
	var ids []uint64
	for id, s := range f.subs {
		if !s.IsActive || s.ActivationID == nil {
			continue
		}
		if a, ok := f.acts[*s.ActivationID]; ok && a.EndDate.Before(f.now) {
			s.IsActive = false
			ids = append(ids, id)
		}
	}
	return len(ids), ids, nil
}

// ---- ActivationRepo ----

func (f *fakeStore) GetActivation(ctx context.Context, id uint64) (*Activation, error) {
	a, ok := f.acts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	cp.Subscription, _ = f.GetSubscription(ctx, a.SubscriptionID)
	return &cp, nil
}

func (f *fakeStore) CreateActivation(ctx context.Context, act *Activation) error {
	act.ID = f.id()
	cp := *act
	cp.Subscription = nil
	f.acts[act.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateActivation(ctx context.Context, act *Activation) error {
	cp := *act
	cp.Subscription = nil
	f.acts[act.ID] = &cp
	return nil
}

// ---- OrderRepo ----

func (f *fakeStore) GetOrder(ctx context.Context, id uint64) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, order *Order) error {
	order.ID = f.id()
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateOrder(ctx context.Context, order *Order) error {
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeStore) HasPendingOrder(ctx context.Context, subscriptionID uint64) (bool, error) {
	for _, o := range f.orders {
		if o.SubscriptionID == subscriptionID && o.Status == constants.OrderStatusPending {
			return true, nil
		}
	}
	return false, nil
}

// newTestUsecase 构造测试用例：内存仓库 + miniredis 锁 + 固定时钟
func newTestUsecase(t *testing.T, store *fakeStore) *BillingUsecase {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	rs := redsync.New(goredis.NewPool(rdb))

	c := &conf.Bootstrap{Billing: &conf.Billing{RenewalDaysBefore: 3}}
	uc := NewBillingUsecase(store, store, store, store, store, store, rs, c, log.NewStdLogger(io.Discard))
	uc.now = func() time.Time { return store.now }
	return uc
}

func ctxAsUser(uid uint64) context.Context {
	return auth.WithUser(context.Background(), uid, auth.RoleUser)
}

func ctxAsAdmin(uid uint64) context.Context {
	return auth.WithUser(context.Background(), uid, auth.RoleAdmin)
}

// requireCode 断言错误映射到期望的 HTTP 状态码
func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, kerrors.Code(err))
}

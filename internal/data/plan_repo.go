package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"xinyuan_tech/billing-service/internal/biz"
	"xinyuan_tech/billing-service/internal/constants"
	"xinyuan_tech/billing-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// planCacheNull 空值缓存占位（防止缓存穿透）
const planCacheNull = "null"

// planRepo Plan 仓库实现
type planRepo struct {
	data *Data
	log  *log.Helper
}

// NewPlanRepo 创建 Plan 仓库
func NewPlanRepo(data *Data, logger log.Logger) biz.PlanRepo {
	return &planRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func planCacheKey(id uint64) string {
	return fmt.Sprintf("billing:plan:%d", id)
}

// cacheExpiration 带随机抖动的缓存过期时间（防止缓存雪崩）
func cacheExpiration() time.Duration {
	return constants.DefaultCacheExpiration + time.Duration(rand.Intn(constants.CacheRandomMaxSeconds))*time.Second
}

// ListPlans 获取所有套餐列表
func (r *planRepo) ListPlans(ctx context.Context) ([]*biz.Plan, error) {
	var models []model.Plan
	if err := r.data.DB(ctx).Find(&models).Error; err != nil {
		r.log.Errorf("Failed to list plans: %v", err)
		return nil, err
	}

	plans := make([]*biz.Plan, len(models))
	for i, m := range models {
		plans[i] = toBizPlan(&m)
	}
	return plans, nil
}

// GetPlan 根据ID获取套餐（redis 读穿缓存）
func (r *planRepo) GetPlan(ctx context.Context, id uint64) (*biz.Plan, error) {
	key := planCacheKey(id)
	if cached, err := r.data.rdb.Get(ctx, key).Result(); err == nil {
		if cached == planCacheNull {
			return nil, nil
		}
		var plan biz.Plan
		if err := json.Unmarshal([]byte(cached), &plan); err == nil {
			return &plan, nil
		}
		// 缓存损坏则回源
		r.log.Warnf("Corrupted plan cache for key %s, falling back to db", key)
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warnf("Redis get failed for key %s: %v", key, err)
	}

	var m model.Plan
	err := r.data.DB(ctx).First(&m, "plan_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.data.rdb.Set(ctx, key, planCacheNull, constants.NullCacheExpiration).Err(); err != nil {
			r.log.Warnf("Failed to cache null plan %d: %v", id, err)
		}
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get plan %d: %v", id, err)
		return nil, err
	}

	plan := toBizPlan(&m)
	if raw, err := json.Marshal(plan); err == nil {
		if err := r.data.rdb.Set(ctx, key, raw, cacheExpiration()).Err(); err != nil {
			r.log.Warnf("Failed to cache plan %d: %v", id, err)
		}
	}
	return plan, nil
}

// CreatePlan 创建套餐
func (r *planRepo) CreatePlan(ctx context.Context, plan *biz.Plan) error {
	m := &model.Plan{
		Name:  plan.Name,
		Price: plan.Price,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create plan: %v", err)
		return err
	}
	plan.ID = m.PlanID
	plan.CreatedAt = m.CreatedAt
	plan.UpdatedAt = m.UpdatedAt
	return nil
}

// UpdatePlan 更新套餐并失效缓存
func (r *planRepo) UpdatePlan(ctx context.Context, plan *biz.Plan) error {
	if err := r.data.DB(ctx).Model(&model.Plan{}).
		Where("plan_id = ?", plan.ID).
		Updates(map[string]interface{}{
			"name":  plan.Name,
			"price": plan.Price,
		}).Error; err != nil {
		r.log.Errorf("Failed to update plan %d: %v", plan.ID, err)
		return err
	}

	if err := r.data.rdb.Del(ctx, planCacheKey(plan.ID)).Err(); err != nil {
		r.log.Warnf("Failed to invalidate plan cache %d: %v", plan.ID, err)
	}
	return nil
}

func toBizPlan(m *model.Plan) *biz.Plan {
	return &biz.Plan{
		ID:        m.PlanID,
		Name:      m.Name,
		Price:     m.Price,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

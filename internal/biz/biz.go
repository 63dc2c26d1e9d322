package biz

import (
	"context"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewBillingUsecase)

// Transaction 事务接口
// 多步写操作（升级清除激活 + 建单、支付成功建激活 + 回写指针）
// 必须在一个事务内完成，任一步失败整体回滚
type Transaction interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}

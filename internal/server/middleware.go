package server

import (
	"context"
	"strconv"

	"xinyuan_tech/billing-service/internal/auth"

	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// Identity 身份注入中间件
// 认证由上游网关完成，这里只信任网关透传的身份头
// 未带身份头的请求按匿名处理，由具体操作的权限校验拒绝
func Identity() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				rawUID := tr.RequestHeader().Get("X-User-Id")
				if uid, err := strconv.ParseUint(rawUID, 10, 64); err == nil && uid > 0 {
					role := auth.RoleUser
					if tr.RequestHeader().Get("X-User-Role") == string(auth.RoleAdmin) {
						role = auth.RoleAdmin
					}
					ctx = auth.WithUser(ctx, uid, role)
				}
			}
			return handler(ctx, req)
		}
	}
}

package auth

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
)

// 定义 context key
type contextKey string

const (
	// UserIDKey 用户ID的context key
	UserIDKey contextKey = "user_id"
	// UserRoleKey 用户角色的context key
	UserRoleKey contextKey = "user_role"
)

// Role 用户角色
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// WithUser 将调用方身份写入 context（由网关中间件注入）
func WithUser(ctx context.Context, uid uint64, role Role) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, uid)
	return context.WithValue(ctx, UserRoleKey, role)
}

// GetUIDFromContext 从context中获取用户ID
func GetUIDFromContext(ctx context.Context) (uint64, bool) {
	uid, ok := ctx.Value(UserIDKey).(uint64)
	return uid, ok
}

// GetRoleFromContext 从context中获取用户角色
func GetRoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(UserRoleKey).(Role)
	return role, ok
}

// IsAdmin 判断当前用户是否为管理员
func IsAdmin(ctx context.Context) bool {
	role, ok := GetRoleFromContext(ctx)
	return ok && role == RoleAdmin
}

// RequireAdmin 校验当前用户是否为管理员
func RequireAdmin(ctx context.Context) error {
	if _, ok := GetUIDFromContext(ctx); !ok {
		return errors.Unauthorized("UNAUTHORIZED", "authentication required")
	}
	if !IsAdmin(ctx) {
		return errors.Unauthorized("UNAUTHORIZED", "unauthorized access")
	}
	return nil
}

// CheckOwnership 检查用户是否有权限访问指定资源（资源归属用户ID）
func CheckOwnership(ctx context.Context, ownerUID uint64) error {
	currentUID, ok := GetUIDFromContext(ctx)
	if !ok {
		return errors.Unauthorized("UNAUTHORIZED", "authentication required")
	}

	// 管理员可以访问所有资源
	if IsAdmin(ctx) {
		return nil
	}

	// 普通用户只能访问自己拥有的资源
	if currentUID != ownerUID {
		return errors.Unauthorized("UNAUTHORIZED", "unauthorized access")
	}

	return nil
}

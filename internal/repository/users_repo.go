package repository

import (
	"context"

	"employee-import/internal/domain"
)

// UsersRepository 用户聚合Repository接口
// 使用强类型领域模型，三表（users/user_profiles/employees）作为一个聚合读写
type UsersRepository interface {
	// FindUserIDByEmployeeNo 按员工编号自然键查找 user_id
	// 不存在时返回 sql.ErrNoRows；存在多条时取最早创建的一条
	FindUserIDByEmployeeNo(ctx context.Context, employeeNo string) (string, error)

	// CreateAggregate 在单个事务中创建三表聚合，返回生成的 user_id
	// 先写 users 拿到身份，再写 user_profiles 和 employees
	CreateAggregate(ctx context.Context, agg *domain.PersonAggregate) (string, error)

	// UpdateAggregate 在单个事务中按 user_id 更新三表聚合
	// 任一语句失败则整行回滚，不留下半写的聚合
	UpdateAggregate(ctx context.Context, userID string, agg *domain.PersonAggregate) error
}

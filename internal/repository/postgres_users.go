package repository

import (
	"context"
	"database/sql"
	"fmt"

	"employee-import/internal/domain"

	"github.com/google/uuid"
)

// PostgresUsersRepository 用户聚合Repository实现
type PostgresUsersRepository struct {
	db *sql.DB
}

// NewPostgresUsersRepository 创建用户聚合Repository
func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

// 确保实现了接口
var _ UsersRepository = (*PostgresUsersRepository)(nil)

// FindUserIDByEmployeeNo 按员工编号自然键查找 user_id
func (r *PostgresUsersRepository) FindUserIDByEmployeeNo(ctx context.Context, employeeNo string) (string, error) {
	if employeeNo == "" {
		return "", sql.ErrNoRows
	}

	query := `
		SELECT user_id::text
		FROM users
		WHERE employee_no = $1
		ORDER BY created_at
		LIMIT 1
	`

	var userID string
	if err := r.db.QueryRowContext(ctx, query, employeeNo).Scan(&userID); err != nil {
		return "", err
	}

	return userID, nil
}

// CreateAggregate 在单个事务中创建三表聚合
func (r *PostgresUsersRepository) CreateAggregate(ctx context.Context, agg *domain.PersonAggregate) (string, error) {
	if agg == nil {
		return "", fmt.Errorf("aggregate is required")
	}
	if agg.User.EmployeeNo == "" {
		return "", fmt.Errorf("employee_no is required")
	}
	if agg.User.Email == "" {
		return "", fmt.Errorf("email is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userID := uuid.NewString()

	// 插入users表（身份行先写，后续两表引用其 user_id）
	userQuery := `
		INSERT INTO users (
			user_id, first_name, last_name, username, email,
			role, employee_no, full_name, is_employee, password_hash
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`
	if _, err := tx.ExecContext(ctx, userQuery,
		userID,
		agg.User.FirstName,
		agg.User.LastName,
		agg.User.Username,
		agg.User.Email,
		agg.User.Role,
		agg.User.EmployeeNo,
		agg.User.FullName,
		agg.User.IsEmployee,
		agg.User.PasswordHash,
	); err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	// 插入user_profiles表
	profileQuery := `
		INSERT INTO user_profiles (user_id, phone, email, employee_no)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, profileQuery,
		userID,
		agg.Profile.Phone,
		agg.Profile.Email,
		agg.Profile.EmployeeNo,
	); err != nil {
		return "", fmt.Errorf("failed to insert user profile: %w", err)
	}

	// 插入employees表
	employeeQuery := `
		INSERT INTO employees (user_id, employee_no, employee_no_int, full_name, email, tenure)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, employeeQuery,
		userID,
		agg.Employee.EmployeeNo,
		agg.Employee.EmployeeNoInt,
		agg.Employee.FullName,
		agg.Employee.Email,
		agg.Employee.Tenure,
	); err != nil {
		return "", fmt.Errorf("failed to insert employee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return userID, nil
}

// UpdateAggregate 在单个事务中按 user_id 更新三表聚合
func (r *PostgresUsersRepository) UpdateAggregate(ctx context.Context, userID string, agg *domain.PersonAggregate) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	if agg == nil {
		return fmt.Errorf("aggregate is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 更新users表（不覆盖 password_hash，密码只在创建时写入）
	userQuery := `
		UPDATE users SET
			first_name = $2,
			last_name = $3,
			username = $4,
			email = $5,
			role = $6,
			employee_no = $7,
			full_name = $8,
			is_employee = $9
		WHERE user_id = $1
	`
	if _, err := tx.ExecContext(ctx, userQuery,
		userID,
		agg.User.FirstName,
		agg.User.LastName,
		agg.User.Username,
		agg.User.Email,
		agg.User.Role,
		agg.User.EmployeeNo,
		agg.User.FullName,
		agg.User.IsEmployee,
	); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	// 更新user_profiles表
	profileQuery := `
		UPDATE user_profiles SET
			phone = $2,
			email = $3,
			employee_no = $4
		WHERE user_id = $1
	`
	if _, err := tx.ExecContext(ctx, profileQuery,
		userID,
		agg.Profile.Phone,
		agg.Profile.Email,
		agg.Profile.EmployeeNo,
	); err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	// 更新employees表
	employeeQuery := `
		UPDATE employees SET
			employee_no = $2,
			employee_no_int = $3,
			full_name = $4,
			email = $5,
			tenure = $6
		WHERE user_id = $1
	`
	if _, err := tx.ExecContext(ctx, employeeQuery,
		userID,
		agg.Employee.EmployeeNo,
		agg.Employee.EmployeeNoInt,
		agg.Employee.FullName,
		agg.Employee.Email,
		agg.Employee.Tenure,
	); err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

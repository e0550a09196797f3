package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"employee-import/internal/domain"
	"employee-import/internal/notifier"
	"employee-import/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Outcome 单行对账结果分类
type Outcome int

const (
	// OutcomeProcessed 行已成功更新或新建
	OutcomeProcessed Outcome = iota
	// OutcomeSkipped 行缺少员工编号或邮箱，未触碰数据库
	OutcomeSkipped
	// OutcomeErrored 行处理过程中发生错误，已被隔离
	OutcomeErrored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Reconciler 行对账引擎
// 按员工编号自然键判定存在性：命中则三表更新，未命中则三表新建并发送欢迎通知
type Reconciler struct {
	repo            repository.UsersRepository
	notifier        notifier.Notifier
	defaultPassword string
	logger          *zap.Logger
}

// NewReconciler 创建对账引擎
func NewReconciler(repo repository.UsersRepository, n notifier.Notifier, defaultPassword string, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:            repo,
		notifier:        n,
		defaultPassword: defaultPassword,
		logger:          logger,
	}
}

// ParseEmployeeNoInt 员工编号的整数形式
// 非数字编号降级为 0（有损但非致命，0 值碰撞是接受的行为）
func ParseEmployeeNoInt(employeeNo string) int {
	n, err := strconv.Atoi(employeeNo)
	if err != nil {
		return 0
	}
	return n
}

// Reconcile 对账单行记录
// 返回的 error 仅在 OutcomeErrored 时非 nil，由调用方按行统计，永不中断批次
func (r *Reconciler) Reconcile(ctx context.Context, rec domain.EmployeeRecord) (Outcome, error) {
	if !rec.IsReconcilable() {
		r.logger.Warn("Skipping row with missing required fields",
			zap.String("employee_no", rec.EmployeeNo),
			zap.String("email", rec.Email),
		)
		return OutcomeSkipped, nil
	}

	userID, err := r.repo.FindUserIDByEmployeeNo(ctx, rec.EmployeeNo)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return OutcomeErrored, fmt.Errorf("failed to look up employee %s: %w", rec.EmployeeNo, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return r.insert(ctx, rec)
	}
	return r.update(ctx, userID, rec)
}

// insert 新建路径：三表事务写入 + 恰好一条欢迎通知
func (r *Reconciler) insert(ctx context.Context, rec domain.EmployeeRecord) (Outcome, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(r.defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return OutcomeErrored, fmt.Errorf("failed to hash default password: %w", err)
	}

	agg := buildAggregate(rec)
	agg.User.PasswordHash = hash

	userID, err := r.repo.CreateAggregate(ctx, agg)
	if err != nil {
		return OutcomeErrored, fmt.Errorf("failed to create aggregate for employee %s: %w", rec.EmployeeNo, err)
	}

	if err := r.notifier.SendWelcome(ctx, rec.Email, rec.FirstName); err != nil {
		return OutcomeErrored, fmt.Errorf("failed to notify employee %s: %w", rec.EmployeeNo, err)
	}

	r.logger.Info("Created employee aggregate",
		zap.String("employee_no", rec.EmployeeNo),
		zap.String("user_id", userID),
	)
	return OutcomeProcessed, nil
}

// update 更新路径：按既有身份键更新三表，不发送通知
func (r *Reconciler) update(ctx context.Context, userID string, rec domain.EmployeeRecord) (Outcome, error) {
	if err := r.repo.UpdateAggregate(ctx, userID, buildAggregate(rec)); err != nil {
		return OutcomeErrored, fmt.Errorf("failed to update aggregate for employee %s: %w", rec.EmployeeNo, err)
	}

	r.logger.Info("Updated employee aggregate",
		zap.String("employee_no", rec.EmployeeNo),
		zap.String("user_id", userID),
	)
	return OutcomeProcessed, nil
}

// buildAggregate 记录到三表聚合的映射
// 角色固定为 registered，员工标记固定为 true
func buildAggregate(rec domain.EmployeeRecord) *domain.PersonAggregate {
	fullName := rec.FullName()

	return &domain.PersonAggregate{
		User: domain.User{
			FirstName:  nullString(rec.FirstName),
			LastName:   nullString(rec.LastName),
			Username:   nullString(rec.Username),
			Email:      rec.Email,
			Role:       domain.RoleRegistered,
			EmployeeNo: rec.EmployeeNo,
			FullName:   nullString(fullName),
			IsEmployee: true,
		},
		Profile: domain.UserProfile{
			Phone:      nullString(rec.Phone),
			Email:      rec.Email,
			EmployeeNo: rec.EmployeeNo,
		},
		Employee: domain.Employee{
			EmployeeNo:    rec.EmployeeNo,
			EmployeeNoInt: ParseEmployeeNoInt(rec.EmployeeNo),
			FullName:      nullString(fullName),
			Email:         rec.Email,
			Tenure:        nullString(rec.Role),
		},
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

package domain

import "database/sql"

// RoleRegistered 本管道写入的所有账号角色固定为 "registered"
const RoleRegistered = "registered"

// User 用户账号模型（对应 users 表）
// user_id 为 UUID 主键，员工编号 employee_no 是跨三表的自然键
type User struct {
	UserID       string         `db:"user_id"`
	FirstName    sql.NullString `db:"first_name"` // nullable
	LastName     sql.NullString `db:"last_name"`  // nullable
	Username     sql.NullString `db:"username"`   // nullable
	Email        string         `db:"email"`      // NOT NULL
	Role         string         `db:"role"`       // NOT NULL
	EmployeeNo   string         `db:"employee_no"` // NOT NULL, 自然键
	FullName     sql.NullString `db:"full_name"`  // nullable
	IsEmployee   bool           `db:"is_employee"`
	PasswordHash []byte         `db:"password_hash"` // 仅创建时写入
}

// UserProfile 联系方式扩展（对应 user_profiles 表，与 users 1对1）
type UserProfile struct {
	UserID     string         `db:"user_id"`
	Phone      sql.NullString `db:"phone"` // nullable
	Email      string         `db:"email"`
	EmployeeNo string         `db:"employee_no"`
}

// Employee HR扩展（对应 employees 表，与 users 1对1）
// employee_no_int 是员工编号的整数形式，非数字编号降级为 0
type Employee struct {
	UserID        string         `db:"user_id"`
	EmployeeNo    string         `db:"employee_no"`
	EmployeeNoInt int            `db:"employee_no_int"`
	FullName      sql.NullString `db:"full_name"` // nullable
	Email         string         `db:"email"`
	Tenure        sql.NullString `db:"tenure"` // nullable, 职级/聘期标签
}

// PersonAggregate 一名员工对应的三表聚合，始终作为整体创建/更新
type PersonAggregate struct {
	User     User
	Profile  UserProfile
	Employee Employee
}

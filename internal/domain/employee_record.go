package domain

import "strings"

// EmployeeRecord 花名册中的一行员工记录（瞬态，不落库）
// 由表格提取器从 Excel 行构造，字段均已 trim，缺失单元格为空串
type EmployeeRecord struct {
	EmployeeNo string // 员工编号，自然键
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Role       string // 职级/聘期标签（写入 employees.tenure）
	Username   string
}

// FullName 派生全名：first + last，去除多余空白
func (r *EmployeeRecord) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// IsReconcilable 员工编号和邮箱都非空才允许对账
// 不满足时该行直接跳过，不触碰数据库
func (r *EmployeeRecord) IsReconcilable() bool {
	return r.EmployeeNo != "" && r.Email != ""
}

package importer

import (
	"strings"

	"employee-import/internal/domain"
)

// 花名册必需表头（只校验名称集合，与列顺序无关）
var requiredColumns = []string{
	"id",
	"first_name",
	"last_name",
	"email",
	"phone",
	"role",
	"username",
	"grade",
}

// ColumnMap 表头名到列下标（0-based）的映射
// 从表头行解析一次，之后所有单元格都按名称读取，避免列顺序错位
type ColumnMap map[string]int

// normalizeHeader 表头归一化：去空白 + 小写
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// ResolveColumns 解析表头行为列映射并校验必需列
// 缺少任一必需列时返回 ok=false，调用方应整文件跳过（预期内，非错误）
func ResolveColumns(headerRow []string) (ColumnMap, bool) {
	cols := make(ColumnMap, len(headerRow))
	for i, h := range headerRow {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		// 重复表头取首列
		if _, exists := cols[name]; !exists {
			cols[name] = i
		}
	}

	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, false
		}
	}

	return cols, true
}

// cell 按列名读取单元格，越界或缺列返回空串
func (m ColumnMap) cell(row []string, name string) string {
	idx, ok := m[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ExtractRecord 将一个数据行映射为员工记录
// 只做提取和 trim，必填校验由对账引擎负责
func ExtractRecord(cols ColumnMap, row []string) domain.EmployeeRecord {
	return domain.EmployeeRecord{
		EmployeeNo: cols.cell(row, "id"),
		FirstName:  cols.cell(row, "first_name"),
		LastName:   cols.cell(row, "last_name"),
		Email:      cols.cell(row, "email"),
		Phone:      cols.cell(row, "phone"),
		Role:       cols.cell(row, "role"),
		Username:   cols.cell(row, "username"),
	}
}

// isEmptyRow 整行均为空白时视为非数据行
func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

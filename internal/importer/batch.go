package importer

import (
	"context"
	"fmt"
	"io"

	"employee-import/internal/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Summary 单文件处理汇总
type Summary struct {
	Processed int
	Skipped   int
	Errored   int
	// Rejected 表头校验未通过，整文件跳过（预期内，非错误）
	Rejected bool
}

func (s Summary) String() string {
	return fmt.Sprintf("Processed: %d, Skipped: %d, Errors: %d", s.Processed, s.Skipped, s.Errored)
}

// rowReconciler 行对账能力
type rowReconciler interface {
	Reconcile(ctx context.Context, rec domain.EmployeeRecord) (Outcome, error)
}

// BatchProcessor 批处理编排器
// 逐行顺序处理，单行失败只计数不中断；文件级打开失败向上传播
type BatchProcessor struct {
	reconciler rowReconciler
	logger     *zap.Logger
}

// NewBatchProcessor 创建批处理编排器
func NewBatchProcessor(reconciler rowReconciler, logger *zap.Logger) *BatchProcessor {
	return &BatchProcessor{
		reconciler: reconciler,
		logger:     logger,
	}
}

// ProcessFile 处理一个上传的花名册文件
// 工作簿无法打开属于文件级错误，记录后返回 error（由触发方标记本次调用失败）
// 表头校验失败不是错误：记录跳过日志后正常返回
func (p *BatchProcessor) ProcessFile(ctx context.Context, r io.Reader, fileName string) (Summary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		p.logger.Error("Failed to open workbook",
			zap.String("file", fileName),
			zap.Error(err),
		)
		return Summary{}, fmt.Errorf("failed to open workbook %s: %w", fileName, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		p.logger.Error("Failed to read worksheet",
			zap.String("file", fileName),
			zap.String("sheet", sheet),
			zap.Error(err),
		)
		return Summary{}, fmt.Errorf("failed to read worksheet %s: %w", fileName, err)
	}

	// 第1行是表头，解析一次列映射并校验必需列
	var cols ColumnMap
	ok := false
	if len(rows) > 0 {
		cols, ok = ResolveColumns(rows[0])
	}
	if !ok {
		p.logger.Warn("Header validation failed, skipping file",
			zap.String("file", fileName),
			zap.Strings("required_columns", requiredColumns),
		)
		return Summary{Rejected: true}, nil
	}

	var summary Summary
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}

		rec := ExtractRecord(cols, row)
		outcome, err := p.reconciler.Reconcile(ctx, rec)
		if err != nil {
			// 行级错误只计数，不中断批次
			p.logger.Error("Row reconciliation failed",
				zap.String("file", fileName),
				zap.Int("row", i+2), // 表格中的实际行号
				zap.String("employee_no", rec.EmployeeNo),
				zap.Error(err),
			)
		}

		switch outcome {
		case OutcomeProcessed:
			summary.Processed++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeErrored:
			summary.Errored++
		}
	}

	p.logger.Info("File processing completed",
		zap.String("file", fileName),
		zap.String("summary", summary.String()),
	)

	return summary, nil
}

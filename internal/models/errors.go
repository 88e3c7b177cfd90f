package models

import "errors"

var (
	// ErrSummaryNotFound 摘要记录不存在
	ErrSummaryNotFound = errors.New("summary record not found")

	// ErrEvaluationNotFound 评估记录不存在
	ErrEvaluationNotFound = errors.New("evaluation run not found")

	// ErrInvalidEvaluationStatus 无效的评估状态
	ErrInvalidEvaluationStatus = errors.New("invalid evaluation status")
)

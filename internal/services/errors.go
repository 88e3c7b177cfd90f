package services

import (
	"errors"

	"github.com/fyerfyer/legal-summary/internal/loader"
)

// isNotFound 案件或策略数据不存在
func isNotFound(err error) bool {
	return errors.Is(err, loader.ErrCaseNotFound) || errors.Is(err, ErrReferenceMissing)
}

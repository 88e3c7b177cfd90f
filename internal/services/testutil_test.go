package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fyerfyer/legal-summary/internal/database"
	"github.com/fyerfyer/legal-summary/internal/entity"
	"github.com/fyerfyer/legal-summary/internal/evaluation"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/summarizer"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const judgmentText = "IN THE SUPREME COURT OF INDIA. The appellant was convicted under Section 302 of the Indian Penal Code. " +
	"The trial court relied on the confession recorded by the police. " +
	"Justice Ramanna observed that the confession was not voluntary. " +
	"The High Court affirmed the conviction without examining the confession. " +
	"We find that the prosecution failed to prove the chain of circumstances beyond reasonable doubt. " +
	"Reliance was placed on AIR 1975 SC 123 and the Evidence Act, 1872. " +
	"The appeal is allowed and the appellant is acquitted."

const shortText = "The appeal is dismissed. No order as to costs."

func writeCaseFile(t *testing.T, base, rel, content string) {
	t.Helper()
	p := filepath.Join(base, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

// newCaseDir 构造测试用的案件目录
// 案件1有三种策略，案件2缺少语义分块，案件3只有语义分块
func newCaseDir(t *testing.T) string {
	dir := t.TempDir()
	writeCaseFile(t, dir, "metadata/metadata1.txt", "Case 1: State v. Ram")
	writeCaseFile(t, dir, "metadata/metadata2.txt", "Case 2")

	writeCaseFile(t, dir, "Semantic/Semantic-Chunker-1.txt", judgmentText+"\n---\n"+shortText)
	writeCaseFile(t, dir, "TokenWise/Token-Chunker-1.txt", judgmentText+"\n---\n"+shortText)
	writeCaseFile(t, dir, "Recursive/Recursive-Chunker-1.txt", judgmentText)

	writeCaseFile(t, dir, "TokenWise/Token-Chunker-2.txt", shortText)
	writeCaseFile(t, dir, "Recursive/Recursive-Chunker-2.txt", shortText)

	writeCaseFile(t, dir, "Semantic/Semantic-Chunker-3.txt", "A writ petition challenged the jurisdiction of the tribunal. The petition was dismissed.")
	return dir
}

func newTestLoader(t *testing.T) *loader.Loader {
	l, err := loader.New(newCaseDir(t))
	require.NoError(t, err)
	return l
}

func newTestComparison(t *testing.T, l loader.CaseLoader, opts ...ComparisonOption) *ComparisonService {
	return NewComparisonService(l,
		summarizer.New(),
		evaluation.NewEvaluator(evaluation.WithMode(evaluation.ModeApprox)),
		opts...)
}

func newTestAnalysis(t *testing.T, opts ...AnalysisOption) *AnalysisService {
	l := newTestLoader(t)
	return NewAnalysisService(l, summarizer.New(), entity.NewExtractor(), newTestComparison(t, l), opts...)
}

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fyerfyer/legal-summary/internal/document"
	"github.com/sirupsen/logrus"
)

const (
	metadataDir = "metadata"
	originalDir = "Original-Judgements"
	// ChunkSeparator 分块文件中分块之间的分隔符
	ChunkSeparator = "---"
)

// ErrCaseNotFound 案件或原文不存在
var ErrCaseNotFound = errors.New("case not found")

var metadataNameRe = regexp.MustCompile(`^metadata(\d+)\.txt$`)

// CaseLoader 案件数据读取接口
type CaseLoader interface {
	// LoadChunks 读取案件在某策略下的分块，ok=false表示没有该数据
	LoadChunks(caseID string, strategy Strategy) ([]string, bool, error)
	// LoadMetadata 读取案件元数据
	LoadMetadata(caseID string) (string, bool, error)
	// ListCaseIDs 按数字顺序返回所有案件编号
	ListCaseIDs() []string
}

// Loader 基于目录约定的案件加载器
// 索引在创建时建立一次，之后只读，可被并发请求共享
type Loader struct {
	baseDir  string
	caseIDs  []string
	metadata map[string]string              // caseID -> 相对路径
	chunks   map[Strategy]map[string]string // strategy -> caseID -> 相对路径
	logger   *logrus.Logger
}

// Option 加载器配置选项
type Option func(*Loader)

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New 扫描数据目录并建立案件索引
func New(baseDir string, opts ...Option) (*Loader, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir %s is not a directory", baseDir)
	}

	l := &Loader{
		baseDir:  baseDir,
		metadata: make(map[string]string),
		chunks:   make(map[Strategy]map[string]string),
		logger:   logrus.New(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.buildIndex(); err != nil {
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"data_dir": baseDir,
		"cases":    len(l.caseIDs),
	}).Info("Case index built")

	return l, nil
}

// buildIndex 按命名约定匹配元数据与分块文件
func (l *Loader) buildIndex() error {
	fsys := os.DirFS(l.baseDir)
	ids := make(map[string]struct{})

	metaFiles, err := doublestar.Glob(fsys, metadataDir+"/metadata*.txt")
	if err != nil {
		return fmt.Errorf("failed to scan metadata: %w", err)
	}
	for _, p := range metaFiles {
		if m := metadataNameRe.FindStringSubmatch(path.Base(p)); m != nil {
			l.metadata[m[1]] = p
			ids[m[1]] = struct{}{}
		}
	}

	for _, st := range Strategies {
		nameRe := regexp.MustCompile(`^` + regexp.QuoteMeta(st.FilePrefix()) + `(\d+)\.txt$`)
		files, err := doublestar.Glob(fsys, st.Dir()+"/"+st.FilePrefix()+"*.txt")
		if err != nil {
			return fmt.Errorf("failed to scan %s chunks: %w", st, err)
		}

		index := make(map[string]string)
		for _, p := range files {
			if m := nameRe.FindStringSubmatch(path.Base(p)); m != nil {
				index[m[1]] = p
				ids[m[1]] = struct{}{}
			}
		}
		l.chunks[st] = index
	}

	l.caseIDs = make([]string, 0, len(ids))
	for id := range ids {
		l.caseIDs = append(l.caseIDs, id)
	}
	sortNumeric(l.caseIDs)

	return nil
}

// sortNumeric 按数值排序案件编号
func sortNumeric(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA != nil || errB != nil || a == b {
			return ids[i] < ids[j]
		}
		return a < b
	})
}

// ListCaseIDs 返回案件编号的副本
func (l *Loader) ListCaseIDs() []string {
	return append([]string(nil), l.caseIDs...)
}

// HasCase 判断案件是否在索引中
func (l *Loader) HasCase(caseID string) bool {
	if _, ok := l.metadata[caseID]; ok {
		return true
	}
	for _, index := range l.chunks {
		if _, ok := index[caseID]; ok {
			return true
		}
	}
	return false
}

// LoadMetadata 读取案件元数据，去除首尾空白
func (l *Loader) LoadMetadata(caseID string) (string, bool, error) {
	rel, ok := l.metadata[caseID]
	if !ok {
		return "", false, nil
	}
	data, err := os.ReadFile(filepath.Join(l.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", false, fmt.Errorf("failed to read metadata for case %s: %w", caseID, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// LoadChunks 读取分块文件
func (l *Loader) LoadChunks(caseID string, strategy Strategy) ([]string, bool, error) {
	index, ok := l.chunks[strategy]
	if !ok {
		return nil, false, fmt.Errorf("unknown chunk strategy: %s", strategy)
	}
	rel, ok := index[caseID]
	if !ok {
		return nil, false, nil
	}

	data, err := os.ReadFile(filepath.Join(l.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.WithFields(logrus.Fields{
				"case":     caseID,
				"strategy": strategy,
			}).Warn("Indexed chunk file disappeared")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s chunks for case %s: %w", strategy, caseID, err)
	}

	return SplitChunks(string(data)), true, nil
}

// SplitChunks 按分隔符拆分文件内容
// 只有一个分块时返回原始内容
func SplitChunks(content string) []string {
	var chunks []string
	for _, c := range strings.Split(content, ChunkSeparator) {
		if c = strings.TrimSpace(c); c != "" {
			chunks = append(chunks, c)
		}
	}
	if len(chunks) > 1 {
		return chunks
	}
	return []string{content}
}

// LoadOriginal 读取 Original-Judgements 下的判决书原文，优先使用txt
func (l *Loader) LoadOriginal(caseName string) (string, error) {
	name := filepath.Base(caseName)
	for _, ext := range []string{".txt", ".pdf"} {
		p := filepath.Join(l.baseDir, originalDir, name+ext)
		if _, err := os.Stat(p); err != nil {
			continue
		}

		parser, err := document.ParserFactory(p)
		if err != nil {
			return "", err
		}
		text, err := parser.Parse(p)
		if err != nil {
			return "", fmt.Errorf("failed to parse original judgment %s: %w", name, err)
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: original judgment %s", ErrCaseNotFound, name)
}

// WriteChunks 以分块文件格式写入数据目录
// 已创建的Loader不会感知新文件，需要重新创建
func WriteChunks(baseDir, caseID string, strategy Strategy, chunks []string) (string, error) {
	if strategy.Dir() == "" {
		return "", fmt.Errorf("unknown chunk strategy: %s", strategy)
	}
	dir := filepath.Join(baseDir, strategy.Dir())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create chunk dir: %w", err)
	}

	p := filepath.Join(baseDir, filepath.FromSlash(strategy.FileName(caseID)))
	content := strings.Join(chunks, "\n"+ChunkSeparator+"\n")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write chunk file: %w", err)
	}
	return p, nil
}

// WriteMetadata 写入案件元数据文件
func WriteMetadata(baseDir, caseID, metadata string) error {
	dir := filepath.Join(baseDir, metadataDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create metadata dir: %w", err)
	}
	p := filepath.Join(dir, "metadata"+caseID+".txt")
	if err := os.WriteFile(p, []byte(metadata), 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

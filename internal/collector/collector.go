// Package collector 枚举并过滤待处理文件，同时负责输出模式判定与安全扫描。
package collector

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

// Collector 文件收集器
type Collector struct {
	sourceDir string
	recursive bool
	include   map[string]bool
	order     []string
	exclude   []*regexp2.Regexp
	logger    *zap.Logger
}

// New 创建收集器。无效的排除模式只警告并跳过，不中断运行。
func New(sourceDir string, recursive bool, includeExts, excludePatterns []string, logger *zap.Logger) *Collector {
	include := make(map[string]bool, len(includeExts))
	var order []string
	for _, ext := range includeExts {
		ext = strings.ToLower(ext)
		if !include[ext] {
			include[ext] = true
			order = append(order, ext)
		}
	}

	var exclude []*regexp2.Regexp
	for _, pattern := range excludePatterns {
		re, err := regexp2.Compile(pattern, 0)
		if err != nil {
			logger.Warn("invalid exclusion pattern, skipping",
				zap.String("pattern", pattern),
				zap.Error(err))
			fmt.Printf("WARNING: Invalid exclusion pattern: %s\n", pattern)
			continue
		}
		exclude = append(exclude, re)
	}

	return &Collector{
		sourceDir: sourceDir,
		recursive: recursive,
		include:   include,
		order:     order,
		exclude:   exclude,
		logger:    logger,
	}
}

// IncludeExtensions 返回生效的扩展名列表（保持传入顺序）
func (c *Collector) IncludeExtensions() []string {
	return append([]string(nil), c.order...)
}

// Collect 收集所有待处理文件的绝对路径，按字典序排序
func (c *Collector) Collect() ([]string, error) {
	var candidates []string

	if c.recursive {
		err := filepath.WalkDir(c.sourceDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			candidates = append(candidates, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", c.sourceDir, err)
		}
	} else {
		entries, err := os.ReadDir(c.sourceDir)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", c.sourceDir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			candidates = append(candidates, filepath.Join(c.sourceDir, entry.Name()))
		}
	}

	var files []string
	for _, path := range candidates {
		if !c.accepts(path) {
			continue
		}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

// accepts 判断一个文件是否在处理范围内
func (c *Collector) accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !c.include[ext] {
		return false
	}

	name := filepath.Base(path)
	for _, re := range c.exclude {
		if matched, err := re.MatchString(name); err == nil && matched {
			return false
		}
	}
	return true
}

// Structure 生成源目录的结构清单（用于标准输出布局）
func (c *Collector) Structure() ([]string, error) {
	var lines []string

	if c.recursive {
		err := filepath.WalkDir(c.sourceDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 跳过隐藏目录
				if path != c.sourceDir && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				rel, relErr := filepath.Rel(c.sourceDir, path)
				if relErr == nil && rel != "." {
					lines = append(lines, filepath.ToSlash(rel)+"/")
				}
				return nil
			}
			if c.accepts(path) {
				rel, relErr := filepath.Rel(c.sourceDir, path)
				if relErr == nil {
					lines = append(lines, "  "+filepath.ToSlash(rel))
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", c.sourceDir, err)
		}
		return lines, nil
	}

	entries, err := os.ReadDir(c.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", c.sourceDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(c.sourceDir, entry.Name())
		if c.accepts(path) {
			lines = append(lines, "  "+entry.Name())
		}
	}
	return lines, nil
}

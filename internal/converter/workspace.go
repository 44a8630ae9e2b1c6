package converter

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkspaceManager 管理一次运行期间创建的所有临时目录。
// 目录在运行结束时统一清理（尽力而为，清理错误被吞掉），
// 运行过程中只有创建者所在的调用链可以写入。
type WorkspaceManager struct {
	mu     sync.Mutex
	dirs   []string
	runID  string
	logger *zap.Logger
}

// NewWorkspaceManager 创建工作区管理器
func NewWorkspaceManager(logger *zap.Logger) *WorkspaceManager {
	return &WorkspaceManager{
		runID:  uuid.New().String(),
		logger: logger,
	}
}

// RunID 返回本次运行的会话 ID
func (m *WorkspaceManager) RunID() string {
	return m.runID
}

// Create 创建一个新的临时目录并登记，label 标识用途（zip / doc / eml）。
// 目录名带上会话 ID 前缀，一次运行遗留的目录可以按 ID 归拢排查。
func (m *WorkspaceManager) Create(label string) (string, error) {
	dir, err := os.MkdirTemp("", fmt.Sprintf("documix-%s-%s-", m.runID[:8], label))
	if err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}

	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()

	m.logger.Debug("workspace created",
		zap.String("dir", dir),
		zap.String("label", label))

	return dir, nil
}

// Count 返回已登记的临时目录数量
func (m *WorkspaceManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirs)
}

// CleanupAll 删除所有登记的临时目录
func (m *WorkspaceManager) CleanupAll() {
	m.mu.Lock()
	dirs := m.dirs
	m.dirs = nil
	m.mu.Unlock()

	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			m.logger.Debug("workspace cleanup failed",
				zap.String("dir", dir),
				zap.Error(err))
		}
	}
}

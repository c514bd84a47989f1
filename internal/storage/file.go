package storage

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"cfd-certificate/internal/template"
)

// FileStorage 部署模板文件存储
// 由部署工具生成的模板文件在此读取和回写。
type FileStorage struct {
	path   string
	logger *log.Entry
}

// NewFileStorage 创建文件存储，logger 为 nil 时使用全局 logger
func NewFileStorage(path string, logger *log.Entry) *FileStorage {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &FileStorage{path: path, logger: logger}
}

// Path 返回模板文件路径
func (s *FileStorage) Path() string {
	return s.path
}

// Template 读取模板
func (s *FileStorage) Template() (*template.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("读取模板文件失败: %w", err)
	}

	doc, err := template.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析模板文件 %s 失败: %w", s.path, err)
	}
	return doc, nil
}

// SetTemplate 保存模板
// 先写临时文件再重命名，避免中途失败留下半个模板。
func (s *FileStorage) SetTemplate(doc *template.Document) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(doc.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("写入模板失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("写入模板失败: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("保存模板失败: %w", err)
	}

	s.logger.Printf("模板已保存到: %s", s.path)
	return nil
}

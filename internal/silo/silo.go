// Package silo はIssueごとの進捗ノートの永続化を提供する。
// ノートは次回の実行時にプロンプトへ埋め込まれ、
// 修正ループやセッション再開をまたいだ文脈の継続に使われる。
package silo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/douhashi/oyakata/internal/logger"
	"github.com/douhashi/oyakata/internal/yaml"
)

// Progress はIssue1件分の進捗ノート
type Progress struct {
	IssueID          string    `yaml:"issueId"`
	IssueTitle       string    `yaml:"issueTitle"`
	IssueDescription string    `yaml:"issueDescription,omitempty"`
	WhatWasDone      []string  `yaml:"whatWasDone"`
	WhatsNext        []string  `yaml:"whatsNext"`
	CurrentStep      string    `yaml:"currentStep"`
	LastUpdated      time.Time `yaml:"lastUpdated"`
}

// Store は進捗ノートの読み書きを抽象化するインターフェース
type Store interface {
	// Read はIssueの進捗ノートを返す。ノートが存在しない場合は(nil, nil)を返す。
	Read(issueID string) (*Progress, error)
	// Write は進捗ノートを保存する。LastUpdatedは保存時刻で上書きされる。
	Write(progress *Progress) error
	// Delete はIssueの進捗ノートを削除する。存在しない場合もエラーにしない。
	Delete(issueID string) error
}

// FileStore はStoreのファイルベースの実装
type FileStore struct {
	dir    string
	logger logger.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore は新しいFileStoreを作成する
func NewFileStore(dir string, log logger.Logger) *FileStore {
	return &FileStore{dir: dir, logger: log}
}

// Read はIssueの進捗ノートをファイルから読み込む
func (s *FileStore) Read(issueID string) (*Progress, error) {
	path := s.notePath(issueID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var progress Progress
	if err := yaml.Read(path, &progress); err != nil {
		return nil, fmt.Errorf("failed to read progress note for issue %s: %w", issueID, err)
	}
	return &progress, nil
}

// Write は進捗ノートをファイルへ保存する
func (s *FileStore) Write(progress *Progress) error {
	if progress == nil || progress.IssueID == "" {
		return fmt.Errorf("progress note requires an issue id")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create silo directory: %w", err)
	}

	progress.LastUpdated = time.Now()
	if err := yaml.AtomicWrite(s.notePath(progress.IssueID), progress); err != nil {
		return fmt.Errorf("failed to write progress note for issue %s: %w", progress.IssueID, err)
	}

	s.logger.Debug("progress note saved", "issue_id", progress.IssueID, "current_step", progress.CurrentStep)
	return nil
}

// Delete はIssueの進捗ノートを削除する
func (s *FileStore) Delete(issueID string) error {
	if err := yaml.Remove(s.notePath(issueID)); err != nil {
		return fmt.Errorf("failed to delete progress note for issue %s: %w", issueID, err)
	}
	return nil
}

func (s *FileStore) notePath(issueID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("issue-%s.yml", sanitizeID(issueID)))
}

func sanitizeID(id string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", ".", "_", " ", "_")
	return replacer.Replace(id)
}

// FormatContext は進捗ノートをプロンプトへ埋め込むテキストに整形する。
// ノートがない場合は空文字列を返す。
func FormatContext(p *Progress) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Prior progress notes for this issue:\n")
	if p.CurrentStep != "" {
		fmt.Fprintf(&b, "Current step: %s\n", p.CurrentStep)
	}
	if len(p.WhatWasDone) > 0 {
		b.WriteString("Done so far:\n")
		for _, item := range p.WhatWasDone {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if len(p.WhatsNext) > 0 {
		b.WriteString("Next steps:\n")
		for _, item := range p.WhatsNext {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	b.WriteString("\n")
	return b.String()
}

package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// PathManager はoyakataのファイルパスを管理するインターフェース
type PathManager interface {
	DataDir() string
	RunDir() string
	LogDir(repoIdentifier string) string
	SessionFile(repoIdentifier string) string
	SiloDir(repoIdentifier string) string
	PIDFile(repoIdentifier string) string
	EnsureDirectories() error
	EnsureRepoDirectories(repoIdentifier string) error
}

type pathManager struct {
	baseDir string
}

// NewPathManager は新しいPathManagerを作成します
func NewPathManager(baseDir string) PathManager {
	if baseDir == "" {
		baseDir = filepath.Join(os.Getenv("HOME"), ".local", "share", "oyakata")
	}
	return &pathManager{
		baseDir: baseDir,
	}
}

// DataDir はデータディレクトリのパスを返します
func (p *pathManager) DataDir() string {
	return p.baseDir
}

// RunDir はPIDファイルを格納するディレクトリのパスを返します
func (p *pathManager) RunDir() string {
	return filepath.Join(p.baseDir, "run")
}

// LogDir は指定されたリポジトリのログディレクトリのパスを返します
func (p *pathManager) LogDir(repoIdentifier string) string {
	sanitized := p.sanitizeIdentifier(repoIdentifier)
	return filepath.Join(p.baseDir, "logs", sanitized)
}

// SessionFile は指定されたリポジトリのセッションファイルのパスを返します
func (p *pathManager) SessionFile(repoIdentifier string) string {
	sanitized := p.sanitizeIdentifier(repoIdentifier)
	return filepath.Join(p.baseDir, "sessions", sanitized+".yml")
}

// SiloDir は指定されたリポジトリのコンテキストノートディレクトリのパスを返します
func (p *pathManager) SiloDir(repoIdentifier string) string {
	sanitized := p.sanitizeIdentifier(repoIdentifier)
	return filepath.Join(p.baseDir, "silo", sanitized)
}

// PIDFile は指定されたリポジトリのPIDファイルのパスを返します
func (p *pathManager) PIDFile(repoIdentifier string) string {
	sanitized := p.sanitizeIdentifier(repoIdentifier)
	return filepath.Join(p.RunDir(), sanitized+".pid")
}

// EnsureDirectories は必要なディレクトリを作成します
func (p *pathManager) EnsureDirectories() error {
	dirs := []string{
		p.RunDir(),
		filepath.Join(p.baseDir, "logs"),
		filepath.Join(p.baseDir, "sessions"),
		filepath.Join(p.baseDir, "silo"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// EnsureRepoDirectories は指定されたリポジトリ用のディレクトリを作成します
func (p *pathManager) EnsureRepoDirectories(repoIdentifier string) error {
	dirs := []string{
		p.LogDir(repoIdentifier),
		p.SiloDir(repoIdentifier),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// sanitizeIdentifier はファイルシステムで安全な識別子に変換します
func (p *pathManager) sanitizeIdentifier(identifier string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		".", "_",
		" ", "_",
	)
	return replacer.Replace(identifier)
}

// Package yaml はYAMLファイルのアトミックな読み書きを提供する
package yaml

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	yamlv3 "gopkg.in/yaml.v3"
)

// AtomicWrite はdataをYAMLに変換し、pathへアトミックに書き込む。
// 一時ファイルへの書き込みと検証を経てからリネームするため、
// 途中でクラッシュしても既存ファイルは壊れない。
func AtomicWrite(path string, data interface{}) error {
	content, err := yamlv3.Marshal(data)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	return AtomicWriteRaw(path, content)
}

// AtomicWriteRaw はYAMLバイト列をpathへアトミックに書き込む
func AtomicWriteRaw(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".oyakata-tmp-*.yml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// リネーム前に書き込んだ内容がYAMLとして読めることを確認する
	written, err := os.ReadFile(tmpName)
	if err != nil {
		return fmt.Errorf("read temp file for validation: %w", err)
	}
	if err := validateYAML(written); err != nil {
		return fmt.Errorf("yaml validation failed: %w", err)
	}

	// 既存ファイルがあればバックアップを残す
	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, path+".bak"); err != nil {
			return fmt.Errorf("create backup: %w", err)
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}

	return nil
}

// Read はpathのYAMLファイルを読み込み、outへ展開する
func Read(path string, out interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read yaml file: %w", err)
	}
	if err := yamlv3.Unmarshal(content, out); err != nil {
		return fmt.Errorf("yaml unmarshal: %w", err)
	}
	return nil
}

// Remove はpathとそのバックアップファイルを削除する。
// ファイルが存在しない場合はエラーにしない。
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove yaml file: %w", err)
	}
	if err := os.Remove(path + ".bak"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove backup file: %w", err)
	}
	return nil
}

func validateYAML(content []byte) error {
	var v interface{}
	return yamlv3.Unmarshal(content, &v)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

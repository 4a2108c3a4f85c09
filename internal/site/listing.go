package site

import (
	"fmt"
	"os"
)

// Entry はディレクトリ内の1エントリ
type Entry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// Listing はディレクトリの一覧、またはファイル1件の情報
type Listing struct {
	Path   string  // 要求された相対パス
	IsFile bool    // true の場合は Name のみ有効
	Name   string  // ファイル名
	Items  []Entry // 名前順
}

// List は配信ルートからの相対パスにあるディレクトリの一覧を返す
// 対象がファイルの場合はそのファイル名のみを返す
func (s *Site) List(rel string) (*Listing, error) {
	path, err := s.Locate(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if !info.IsDir() {
		return &Listing{Path: rel, IsFile: true, Name: info.Name()}, nil
	}

	// os.ReadDir は名前順で返す
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	items := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, Entry{Name: entry.Name(), IsDir: entry.IsDir()})
	}

	return &Listing{Path: rel, Items: items}, nil
}

// Open は配信ルートからの相対パスにある通常ファイルを読み込む
// 存在しない場合やディレクトリの場合は ErrNotFound を返す
func (s *Site) Open(rel string) (*File, error) {
	path, err := s.Locate(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: 通常ファイルではありません: %s", ErrNotFound, rel)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return &File{
		Path:        path,
		ContentType: ContentType(path),
		Data:        data,
	}, nil
}

package site

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrOutsideRoot は解決したパスが配信ルートの外にある場合のエラー
	ErrOutsideRoot = errors.New("配信ルート外のパスです")
	// ErrNotFound はファイルを読み込めなかった場合のエラー
	ErrNotFound = errors.New("ファイルが見つかりません")
)

// Site は配信ルートとインデックスファイル名を保持する
// 生成後は変更されないため、複数のリクエストから同時に利用できる
type Site struct {
	root  string // 絶対パス
	index string
}

// File は読み込んだファイルの内容
type File struct {
	Path        string // 解決後の絶対パス
	ContentType string
	Data        []byte
}

// New は新しい Site を作成する
func New(root, index string) (*Site, error) {
	if root == "" {
		return nil, fmt.Errorf("配信ルートが指定されていません")
	}
	if index == "" {
		return nil, fmt.Errorf("インデックスファイル名が指定されていません")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("配信ルートの絶対パス取得に失敗: %w", err)
	}

	return &Site{root: abs, index: index}, nil
}

// Root は配信ルートの絶対パスを返す
func (s *Site) Root() string {
	return s.root
}

// Resolve はデコード済みのリクエストパスを配信ルート配下のファイルパスに変換する
//
// 配信ルートとの包含関係はパスのセグメント単位で判定する。
// ルートの外を指す場合は ErrOutsideRoot を返す。ファイルシステムには触れない。
func (s *Site) Resolve(urlPath string) (string, error) {
	if urlPath == "/" {
		urlPath = s.index
	}

	candidate, err := s.Locate(urlPath)
	if err != nil {
		return "", err
	}

	// 末尾の "/" はディレクトリを意味するので残す（ファイルに付いていれば読み込みは失敗する）
	if strings.HasSuffix(urlPath, "/") {
		candidate += string(filepath.Separator)
	}

	return candidate, nil
}

// Locate は配信ルートからの相対パスを絶対パスに変換する
// インデックスファイルへの置き換えは行わない
func (s *Site) Locate(rel string) (string, error) {
	candidate := filepath.Join(s.root, filepath.FromSlash(rel))

	r, err := filepath.Rel(s.root, candidate)
	if err != nil || !filepath.IsLocal(r) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}

	return candidate, nil
}

// Read はリクエストパスに対応するファイルを全て読み込む
// 読み込みに失敗した場合は原因を問わず ErrNotFound を返す
func (s *Site) Read(urlPath string) (*File, error) {
	path, err := s.Resolve(urlPath)
	if err != nil {
		return nil, err
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

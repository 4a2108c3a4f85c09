// Package builder は配信用ディレクトリのビルドを担う。
//
// ソースディレクトリ直下のファイルをビルド先へコピーし、
// 最後にビルド時刻を記録したマーカーファイルを書き込む。
// サブディレクトリは対象外で、スキップして結果に記録する。
package builder

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// MarkerLayout はマーカーファイルに書き込む時刻の形式 (ISO-8601, UTC, ミリ秒)
const MarkerLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	// ErrSourceMissing はソースディレクトリが存在しない場合のエラー
	ErrSourceMissing = errors.New("ビルド元ディレクトリが存在しません")
	// ErrSameDirectory はビルド元とビルド先が同じディレクトリの場合のエラー
	ErrSameDirectory = errors.New("ビルド元とビルド先が同じディレクトリです")
)

// Builder はソースディレクトリからビルド先へのコピーを行う
type Builder struct {
	Src    string // ソースディレクトリ
	Dest   string // ビルド先ディレクトリ
	Marker string // マーカーファイル名

	// Now は現在時刻を返す。nil の場合は time.Now を使う
	Now func() time.Time
}

// Result はビルド結果
type Result struct {
	Copied     []string  // コピーしたファイル名
	Skipped    []string  // スキップしたエントリ名（サブディレクトリ等）
	MarkerPath string    // マーカーファイルのパス
	BuiltAt    time.Time // マーカーに記録した時刻
}

// New は新しいBuilderを作成する
func New(src, dest, marker string) *Builder {
	return &Builder{
		Src:    src,
		Dest:   dest,
		Marker: marker,
	}
}

// Build はビルドを実行する
func (b *Builder) Build() (*Result, error) {
	// ソースディレクトリの存在確認
	info, err := os.Stat(b.Src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, b.Src)
		}
		return nil, fmt.Errorf("ビルド元ディレクトリの確認に失敗: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s はディレクトリではありません", ErrSourceMissing, b.Src)
	}

	// ビルド先ディレクトリを作成
	if err := os.MkdirAll(b.Dest, 0o755); err != nil {
		return nil, fmt.Errorf("ビルド先ディレクトリの作成に失敗: %w", err)
	}

	// 同じディレクトリへのコピーはファイルを切り詰めてしまう
	destInfo, err := os.Stat(b.Dest)
	if err != nil {
		return nil, fmt.Errorf("ビルド先ディレクトリの確認に失敗: %w", err)
	}
	if os.SameFile(info, destInfo) {
		return nil, fmt.Errorf("%w: %s, %s", ErrSameDirectory, b.Src, b.Dest)
	}

	entries, err := os.ReadDir(b.Src)
	if err != nil {
		return nil, fmt.Errorf("ビルド元ディレクトリの読み込みに失敗: %w", err)
	}

	result := &Result{
		Copied: make([]string, 0, len(entries)),
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			log.Printf("サブディレクトリはコピーしません: %s", name)
			result.Skipped = append(result.Skipped, name)
			continue
		}

		copied, err := copyFile(filepath.Join(b.Src, name), filepath.Join(b.Dest, name))
		if err != nil {
			return nil, fmt.Errorf("ファイルのコピーに失敗 (%s): %w", name, err)
		}
		if !copied {
			log.Printf("同一ファイルのためコピーしません: %s", name)
			result.Skipped = append(result.Skipped, name)
			continue
		}
		result.Copied = append(result.Copied, name)
	}

	// マーカーファイルを書き込む
	result.BuiltAt = b.now().UTC()
	result.MarkerPath = filepath.Join(b.Dest, b.Marker)
	if err := os.WriteFile(result.MarkerPath, []byte(MarkerLine(result.BuiltAt)), 0o644); err != nil {
		return nil, fmt.Errorf("マーカーファイルの書き込みに失敗: %w", err)
	}

	return result, nil
}

// MarkerLine はマーカーファイルの内容を返す
func MarkerLine(t time.Time) string {
	return fmt.Sprintf("Built at %s\n", t.UTC().Format(MarkerLayout))
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// copyFile は src の内容で dst を上書きする
// シンボリックリンクはリンク先の内容をコピーする。
// dst が src と同一ファイル（ハードリンク・シンボリックリンク経由）の場合は何もせず false を返す
func copyFile(src, dst string) (bool, error) {
	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("通常ファイルではありません: %s", src)
	}

	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return false, nil
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return false, err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return false, err
	}
	return true, out.Close()
}

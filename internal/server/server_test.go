package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sitekit/internal/config"
)

// newTestConfig はテスト用の配信ルートと設定を作成する
func newTestConfig(t *testing.T, files map[string][]byte) *config.Config {
	t.Helper()
	root := filepath.Join(t.TempDir(), "public")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("配信ルートの作成に失敗: %v", err)
	}
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("ディレクトリの作成に失敗: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("ファイルの作成に失敗: %v", err)
		}
	}

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0 // ランダムポートを使用
	cfg.Server.ReadTimeout = 5 * time.Second
	cfg.Server.WriteTimeout = 5 * time.Second
	cfg.Server.Mode = "test"
	cfg.Site.Root = root
	return cfg
}

// TestServerStartAndShutdown はサーバーの起動とシャットダウンをテストする
func TestServerStartAndShutdown(t *testing.T) {
	cfg := newTestConfig(t, nil)

	// サーバーを作成
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("サーバーの作成に失敗しました: %v", err)
	}
	var out bytes.Buffer
	srv.out = &out

	// テスト用のコンテキスト（タイムアウト付き）
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// サーバーを別ゴルーチンで起動
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// サーバーが起動するまで少し待つ
	time.Sleep(100 * time.Millisecond)

	// コンテキストをキャンセルしてサーバーを停止
	cancel()

	// エラーチャンネルから結果を受信
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("サーバーの起動/停止でエラーが発生しました: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("サーバーの停止がタイムアウトしました")
	}

	line := out.String()
	if !strings.Contains(line, "Server running at http://localhost:") || strings.Count(line, "\n") != 1 {
		t.Errorf("起動メッセージが不正です: %q", line)
	}
}

// TestServerListenError は使用中のポートでの起動失敗をテストする
func TestServerListenError(t *testing.T) {
	srv, err := New(newTestConfig(t, nil))
	if err != nil {
		t.Fatalf("サーバーの作成に失敗しました: %v", err)
	}

	ln, err := srv.Listen()
	if err != nil {
		t.Fatalf("リッスンに失敗しました: %v", err)
	}
	defer ln.Close()

	// 同じポートを使う2つ目のサーバー
	busy := newTestConfig(t, nil)
	busy.Server.Port = ln.Addr().(*net.TCPAddr).Port
	other, err := New(busy)
	if err != nil {
		t.Fatalf("サーバーの作成に失敗しました: %v", err)
	}
	other.out = io.Discard

	if err := other.Start(context.Background()); err == nil {
		t.Error("使用中のポートで起動できてしまいました")
	}
}

// TestServerEndpoints はサーバーのエンドポイントを実際の接続でテストする
func TestServerEndpoints(t *testing.T) {
	cfg := newTestConfig(t, map[string][]byte{
		"index.html": []byte("<!DOCTYPE html><title>sitekit</title>"),
		"logo.png":   {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	})
	cfg.Server.StatusPrefix = "/_sitekit"

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("サーバーの作成に失敗しました: %v", err)
	}
	srv.out = io.Discard

	ln, err := srv.Listen()
	if err != nil {
		t.Fatalf("リッスンに失敗しました: %v", err)
	}

	// テスト用のコンテキスト
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, ln)
	}()
	defer func() {
		cancel()
		<-errCh
	}()

	baseURL := fmt.Sprintf("http://%s", ln.Addr().String())

	// テストケース
	testCases := []struct {
		name           string
		endpoint       string
		expectedStatus int
		expectedType   string
	}{
		{"ルート", "/", http.StatusOK, "text/html; charset=utf-8"},
		{"画像", "/logo.png", http.StatusOK, "image/png"},
		{"存在しないファイル", "/missing.html", http.StatusNotFound, "text/plain; charset=utf-8"},
		{"パストラバーサル", "/%2e%2e/%2e%2e/etc/passwd", http.StatusBadRequest, ""},
		{"ヘルスチェック", "/_sitekit/health", http.StatusOK, "application/json; charset=utf-8"},
		{"ステータス", "/_sitekit/status", http.StatusOK, "application/json; charset=utf-8"},
	}

	// 各エンドポイントをテスト
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(baseURL + tc.endpoint)
			if err != nil {
				t.Fatalf("HTTPリクエストでエラーが発生しました: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.expectedStatus {
				t.Errorf("予期しないステータスコード: got %d, want %d",
					resp.StatusCode, tc.expectedStatus)
			}
			if got := resp.Header.Get("Content-Type"); got != tc.expectedType {
				t.Errorf("予期しないContent-Type: got %q, want %q", got, tc.expectedType)
			}
		})
	}
}

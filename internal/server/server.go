package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sitekit/internal/config"
	"sitekit/internal/site"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間
const shutdownTimeout = 5 * time.Second

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	site       *site.Site
	engine     *gin.Engine
	httpServer *http.Server

	instanceID string
	startedAt  time.Time

	// 起動メッセージの出力先
	out io.Writer
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config) (*Server, error) {
	st, err := site.New(cfg.Site.Root, cfg.Site.Index)
	if err != nil {
		return nil, fmt.Errorf("配信ルートの設定に失敗: %w", err)
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := gin.New()
	// 末尾の "/" の有無でリダイレクトせず、そのままファイル配信に回す
	engine.RedirectTrailingSlash = false
	if cfg.Server.AccessLog {
		engine.Use(gin.Logger())
	}
	// ハンドラ内のパニックでプロセスを落とさない
	engine.Use(gin.Recovery())

	s := &Server{
		config:     cfg,
		site:       st,
		engine:     engine,
		instanceID: uuid.New().String(),
		startedAt:  time.Now(),
		out:        os.Stdout,
		httpServer: &http.Server{
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
	s.setupRoutes()

	return s, nil
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes() {
	// ステータスエンドポイント（プレフィックスが設定されている場合のみ）
	if prefix := s.config.Server.StatusPrefix; prefix != "" {
		api := s.engine.Group(prefix)
		api.GET("/health", s.HealthCheck)
		api.GET("/status", s.GetStatus)

		// 読み取り専用のファイルAPI（書き込み・端末は提供しない）
		if s.config.Server.FileAPI {
			api.GET("/api/list", s.ListFiles)
			api.GET("/api/read", s.ReadFile)
		}
	}

	// それ以外は全てファイル配信。HTTPメソッドは区別しない
	s.engine.NoRoute(s.ServeFile)
}

// Handler はリクエストハンドラを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Listen は設定されたアドレスでリッスンを開始する
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return nil, fmt.Errorf("リッスンに失敗 (%s): %w", s.config.ServerAddress(), err)
	}
	return ln, nil
}

// Start はサーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve は ln でリクエストを受け付け、コンテキストのキャンセルかシグナルで停止する
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.announce(ln.Addr())

	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		log.Println("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		log.Printf("シグナルを受信しました: %v", sig)
	case err := <-shutdownCh:
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	log.Println("サーバーをシャットダウンしています...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	log.Println("サーバーが正常にシャットダウンされました")
	return nil
}

// announce は起動メッセージを1行出力する
func (s *Server) announce(addr net.Addr) {
	port := s.config.Server.Port
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = tcp.Port
	}
	_, _ = color.New(color.FgGreen).Fprintf(s.out, "Server running at http://localhost:%d\n", port)
}

// Package main は静的ファイルサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"sitekit/internal/config"
	"sitekit/internal/server"
)

func main() {
	// コマンドラインオプション
	var (
		host       = flag.String("host", "", "サーバーのホスト (デフォルト: 全てのインターフェース)")
		port       = flag.Int("port", 0, "サーバーのポート (デフォルト: 環境変数 PORT または 3000)")
		root       = flag.String("root", "", "配信ルート (デフォルト: public)")
		configPath = flag.String("config", "", "設定ファイル (.yaml / .toml)")
		help       = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("sitekit server")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// 設定を読み込む
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// コマンドラインオプションで設定を上書き
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *root != "" {
		cfg.Site.Root = *root
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("設定の検証に失敗しました: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("サーバーの作成に失敗しました: %v", err)
	}

	// サーバーを起動
	if err := srv.Start(context.Background()); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

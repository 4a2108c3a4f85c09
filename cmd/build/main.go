// Package main は public から dist へのビルドコマンドの実装です
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sitekit/internal/builder"
	"sitekit/internal/config"

	"github.com/fatih/color"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run はビルドを実行し、終了コードを返す
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("build", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		src        = flags.String("src", "", "ビルド元ディレクトリ (デフォルト: public)")
		dest       = flags.String("dest", "", "ビルド先ディレクトリ (デフォルト: dist)")
		configPath = flags.String("config", "", "設定ファイル (.yaml / .toml)")
	)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	fail := color.New(color.FgRed)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		_, _ = fail.Fprintf(stderr, "設定の読み込みに失敗しました: %v\n", err)
		return 1
	}
	if *src != "" {
		cfg.Build.Src = *src
	}
	if *dest != "" {
		cfg.Build.Dest = *dest
	}

	b := builder.New(cfg.Build.Src, cfg.Build.Dest, cfg.Build.Marker)
	if _, err := b.Build(); err != nil {
		if errors.Is(err, builder.ErrSourceMissing) {
			_, _ = fail.Fprintf(stderr, "No %s directory to build from.\n", filepath.Base(cfg.Build.Src))
		} else {
			_, _ = fail.Fprintf(stderr, "Build failed: %v\n", err)
		}
		return 1
	}

	msg := fmt.Sprintf("Build successful. Dist created at ./%s\n", filepath.ToSlash(filepath.Clean(cfg.Build.Dest)))
	_, _ = color.New(color.FgGreen).Fprint(stdout, msg)
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

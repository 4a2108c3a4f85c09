package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Site   SiteConfig   `yaml:"site" toml:"site"`
	Build  BuildConfig  `yaml:"build" toml:"build"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host" toml:"host"` // リッスンするホスト
	Port int    `yaml:"port" toml:"port"` // リッスンするポート番号

	// タイムアウト設定 (0 は無制限)
	ReadTimeout  time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout"`

	StatusPrefix string `yaml:"status_prefix" toml:"status_prefix"` // ヘルスチェック等のプレフィックス。空なら無効
	AccessLog    bool   `yaml:"access_log" toml:"access_log"`       // リクエストごとのログ出力
	FileAPI      bool   `yaml:"file_api" toml:"file_api"`           // 読み取り専用のファイル一覧・取得API (status_prefix 配下)
	Mode         string `yaml:"mode" toml:"mode"`                   // gin のモード (release, debug, test)
}

// SiteConfig は配信するディレクトリの設定
type SiteConfig struct {
	Root  string `yaml:"root" toml:"root"`   // 配信ルート
	Index string `yaml:"index" toml:"index"` // "/" に対応するファイル名
}

// BuildConfig はビルドの設定
type BuildConfig struct {
	Src    string `yaml:"src" toml:"src"`
	Dest   string `yaml:"dest" toml:"dest"`
	Marker string `yaml:"marker" toml:"marker"` // タイムスタンプを書き込むファイル名
}

// ConfigFileEnv は設定ファイルのパスを指定する環境変数
const ConfigFileEnv = "SITEKIT_CONFIG"

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "",
			Port: 3000,
			Mode: "release",
		},
		Site: SiteConfig{
			Root:  "public",
			Index: "index.html",
		},
		Build: BuildConfig{
			Src:    "public",
			Dest:   "dist",
			Marker: "build.txt",
		},
	}
}

// Load は設定を読み込む
// 環境変数 SITEKIT_CONFIG が設定されていればそのファイルも読み込む
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile は指定された設定ファイルを読み込む。path が空ならデフォルト値から始める
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	// .env は既存の環境変数を上書きしない
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env の読み込みに失敗: %w", err)
	}

	cfg.applyEnv()

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// readFile は拡張子に応じて YAML または TOML の設定ファイルを読み込む
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("YAMLの解析に失敗 (%s): %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("TOMLの解析に失敗 (%s): %w", path, err)
		}
	default:
		return fmt.Errorf("未対応の設定ファイル形式: %s", path)
	}
	return nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)
	c.Server.StatusPrefix = getEnvOrDefault("STATUS_PREFIX", c.Server.StatusPrefix)
	c.Server.AccessLog = getEnvAsBoolOrDefault("ACCESS_LOG", c.Server.AccessLog)
	c.Server.FileAPI = getEnvAsBoolOrDefault("FILE_API", c.Server.FileAPI)
	c.Site.Root = getEnvOrDefault("SITE_ROOT", c.Site.Root)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("タイムアウトが負の値です")
	}
	if c.Server.StatusPrefix != "" && !strings.HasPrefix(c.Server.StatusPrefix, "/") {
		return fmt.Errorf("status_prefix は / で始まる必要があります: %q", c.Server.StatusPrefix)
	}
	if c.Server.FileAPI && c.Server.StatusPrefix == "" {
		return fmt.Errorf("file_api を有効にするには status_prefix が必要です")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("無効なモード: %q", c.Server.Mode)
	}

	if c.Site.Root == "" {
		return fmt.Errorf("配信ルートが設定されていません")
	}
	if c.Site.Index == "" {
		return fmt.Errorf("インデックスファイル名が設定されていません")
	}

	if c.Build.Src == "" || c.Build.Dest == "" {
		return fmt.Errorf("ビルドのディレクトリが設定されていません")
	}
	if c.Build.Marker == "" || filepath.Base(c.Build.Marker) != c.Build.Marker {
		return fmt.Errorf("無効なマーカーファイル名: %q", c.Build.Marker)
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

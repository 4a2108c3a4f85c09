package server

import (
	"errors"
	"net/http"
	"time"

	"sitekit/internal/site"

	"github.com/gin-gonic/gin"
)

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ServerInfo はリッスン設定の情報
type ServerInfo struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// StatusResponse はシステム状態のレスポンス
type StatusResponse struct {
	Status     string     `json:"status"`
	InstanceID string     `json:"instance_id"`
	Server     ServerInfo `json:"server"`
	Root       string     `json:"root"`
	StartedAt  time.Time  `json:"started_at"`
	Timestamp  time.Time  `json:"timestamp"`
}

// ErrorResponse はAPIのエラーレスポンス
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// FileInfoResponse はファイル1件を指定した一覧のレスポンス
type FileInfoResponse struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// ListResponse はディレクトリ一覧のレスポンス
type ListResponse struct {
	Path  string       `json:"path"`
	Items []site.Entry `json:"items"`
}

// ServeFile はリクエストパスに対応するファイルを返す
//
// 配信ルート外は 400、読み込めないファイルは原因を問わず 404 を返す。
func (s *Server) ServeFile(c *gin.Context) {
	file, err := s.site.Read(c.Request.URL.Path)
	switch {
	case errors.Is(err, site.ErrOutsideRoot):
		// Content-Type は付けない（自動判定も抑止する）
		c.Writer.Header()["Content-Type"] = nil
		c.Status(http.StatusBadRequest)
		_, _ = c.Writer.WriteString("Bad request")
		return
	case err != nil:
		c.Data(http.StatusNotFound, "text/plain; charset=utf-8", []byte("Not found"))
		return
	}

	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (s *Server) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}

	c.JSON(http.StatusOK, response)
}

// GetStatus はシステム状態取得エンドポイントの実装
func (s *Server) GetStatus(c *gin.Context) {
	response := StatusResponse{
		Status:     "running",
		InstanceID: s.instanceID,
		Server: ServerInfo{
			Host: s.config.Server.Host,
			Port: s.config.Server.Port,
		},
		Root:      s.site.Root(),
		StartedAt: s.startedAt,
		Timestamp: time.Now(),
	}

	c.JSON(http.StatusOK, response)
}

// ListFiles は配信ルート配下のディレクトリ一覧を返す
// path が省略された場合は配信ルートを対象とする
func (s *Server) ListFiles(c *gin.Context) {
	rel := c.Query("path")

	listing, err := s.site.List(rel)
	if err != nil {
		s.apiError(c, err)
		return
	}

	if listing.IsFile {
		c.JSON(http.StatusOK, FileInfoResponse{Type: "file", Name: listing.Name})
		return
	}
	c.JSON(http.StatusOK, ListResponse{Path: listing.Path, Items: listing.Items})
}

// ReadFile は配信ルート配下のファイルの内容を返す
func (s *Server) ReadFile(c *gin.Context) {
	rel, ok := c.GetQuery("path")
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "path_required",
			Message:   "path は必須です",
			Timestamp: time.Now(),
		})
		return
	}

	file, err := s.site.Open(rel)
	if err != nil {
		s.apiError(c, err)
		return
	}

	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// apiError はファイルAPIのエラーをレスポンスに変換する
func (s *Server) apiError(c *gin.Context, err error) {
	if errors.Is(err, site.ErrOutsideRoot) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "invalid_path",
			Message:   "配信ルート外のパスは指定できません",
			Timestamp: time.Now(),
		})
		return
	}
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:     "not_found",
		Message:   "Not found",
		Timestamp: time.Now(),
	})
}

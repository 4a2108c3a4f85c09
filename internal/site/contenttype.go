package site

import (
	"path/filepath"
	"strings"
)

// DefaultContentType は未知の拡張子に対する Content-Type
const DefaultContentType = "application/octet-stream"

// contentTypes は小文字の拡張子から Content-Type への対応表
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".js":   "application/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
}

// ContentType はファイルパスの拡張子から Content-Type を決定する
// 大文字小文字は区別しない
func ContentType(path string) string {
	base := filepath.Base(path)
	// ".png" のようなドットファイルは拡張子なしとして扱う
	if strings.LastIndex(base, ".") == 0 {
		return DefaultContentType
	}

	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(base))]; ok {
		return ct
	}
	return DefaultContentType
}

// Package site は配信ルート配下のファイル解決を担う。
//
// 責務:
//   - リクエストパスから配信ルート配下のファイルパスへの変換
//   - 配信ルート外へのパストラバーサルの拒否
//   - 拡張子からの Content-Type の決定
//   - ファイルAPI向けのディレクトリ一覧と読み込み (List, Open)
//
// 仕様:
//   - "/" はインデックスファイル (index.html) に対応する
//   - 包含チェックは字句的に行い、ファイルシステムには触れない
//   - 末尾の "/" はディレクトリを意味し、ファイルに付いていれば読み込めない
//   - 読み込み失敗の原因（存在しない、権限、ディレクトリ等）は区別しない
package site

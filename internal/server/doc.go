// Package server は、静的ファイルを配信するHTTPサーバーを管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// 配信ルート配下のファイルの返却を担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - 静的ファイルの配信（パストラバーサルの拒否を含む）
//   - ヘルスチェック・ステータスの提供（設定時のみ）
//   - 読み取り専用のファイル一覧・取得API（file_api 有効時のみ。書き込みは提供しない）
//
// 仕様:
//   - gin を使用し、ファイル配信は NoRoute で全メソッドを受け付ける
//   - 末尾の "/" によるリダイレクトは行わない
//   - グレースフルシャットダウンに対応
//   - リクエスト間で共有する可変状態は持たない
//   - キャッシュヘッダ、Range リクエストには対応しない
package server

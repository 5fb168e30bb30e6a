// Package logger はブログ全体で使うJSON構造化ログの設定を提供する。
// リクエストログ・認証イベント・コンテンツ操作のログはすべて
// ここで設定したslogを経由して出力される。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup は指定のwriterへ出力するJSON構造化ログのslog.Loggerを返す。
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerがnilの場合はos.Stdoutへ出力する（本番のコンテナログ収集を想定）。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w))
}

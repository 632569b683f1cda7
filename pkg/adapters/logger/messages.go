package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting render of %s":                       "%s のレンダリングを開始します",
		"Resolved %d frames at %g fps":                "%d フレームを解決しました (%g fps)",
		"Resuming: %d of %d frames already captured":  "再開: %d / %d フレームはキャプチャ済みです",
		"Launching %d surfaces":                       "%d 個のサーフェスを起動中",
		"Captured %d/%d frames":                       "%d/%d フレームをキャプチャしました",
		"Captured %d frames in %d ms":                 "%d フレームを %d ms でキャプチャしました",
		"Stitching %d frames into %s":                 "%d フレームを %s に結合中",
		"Published to %s":                             "%s に公開しました",
		"Render completed successfully":               "レンダリングが正常に完了しました",
		"Render aborted: %s":                          "レンダリングを中止しました: %s",
		"Frames kept in %s":                           "フレームは %s に残されています",
		"Found %d frames in %s":                       "%d フレームが %s に見つかりました",
		"Video written to %s":                         "動画を %s に書き出しました",
		"Video has %d frames, expected %d":            "動画のフレーム数が %d です (期待値 %d)",
		"Encoder unavailable: %s":                     "エンコーダーを利用できません: %s",
		"Invalid composition: %s":                     "コンポジションが不正です: %s",
		"Failed to stitch video: %s":                  "動画の結合に失敗しました: %s",
		"Failed to publish video: %s":                 "動画の公開に失敗しました: %s",
		"Failed to reset run ledger: %s":              "実行台帳のリセットに失敗しました: %s",
		"Failed to read run ledger, capturing every frame: %s": "実行台帳の読み込みに失敗しました。全フレームをキャプチャします: %s",
		"Failed to record frame %d in run ledger: %s": "フレーム %d を実行台帳に記録できませんでした: %s",
		"Failed to build contact sheet: %s":           "コンタクトシートの作成に失敗しました: %s",
		"Failed to save contact sheet: %s":            "コンタクトシートの保存に失敗しました: %s",

		// Pool
		"Pool ready with %d surfaces":                 "%d 個のサーフェスでプールの準備ができました",
		"Releasing %d surfaces":                       "%d 個のサーフェスを解放中",
		"Replaced surface %d with %d":                 "サーフェス %d を %d に置き換えました",
		"Failed to close surface %d: %v":              "サーフェス %d を閉じられませんでした: %v",
		"Frame %d failed on surface %d, retrying on a fresh surface: %v": "フレーム %d がサーフェス %d で失敗しました。新しいサーフェスで再試行します: %v",
		"Frame %d failed permanently after %d attempts: %v":              "フレーム %d は %d 回の試行後に失敗しました: %v",

		// Page events
		"Surface %d crashed while rendering frame %d": "サーフェス %d がフレーム %d のレンダリング中にクラッシュしました",
		"Page error on surface %d (frame %d): %s":     "サーフェス %d でページエラー (フレーム %d): %s",

		// Browser
		"Launched chrome %s":   "Chrome %s を起動しました",
		"Launched chromium %s": "Chromium %s を起動しました",

		// Publishing
		"Uploaded %s to %s": "%s を %s にアップロードしました",

		// CLI
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Output saved to %s":            "出力を %s に保存しました",
		"Summary written to %s":         "サマリーを %s に書き出しました",
		"Serving metrics on %s":         "%s でメトリクスを公開中",
		"Metrics server stopped: %v":    "メトリクスサーバーが停止しました: %v",
	})
}

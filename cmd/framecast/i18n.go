// Package main provides localization for the framecast CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":                "出力先",
		"Composition":           "コンポジション",
		"Capture":               "キャプチャ",
		"Browser":               "ブラウザ設定",
		"Video and Quality":     "動画と品質",
		"Resume and Publishing": "再開と公開",
		"Debug":                 "デバッグ",
		"Logging":               "ログ",

		// Root command
		"Render web compositions to video frame by frame": "Webコンポジションをフレームごとに動画へレンダリング",
		"framecast captures every frame of a composition in headless browsers and stitches them into a video with ffmpeg.": "framecastはヘッドレスブラウザでコンポジションの全フレームをキャプチャし、ffmpegで動画に結合します。",

		// Commands
		"Render a composition to video":                  "コンポジションを動画にレンダリング",
		"Stitch previously captured frames into a video": "キャプチャ済みのフレームを動画に結合",
		"Show host capabilities and tool locations":      "ホストの性能とツールの場所を表示",
		"Show version information":                       "バージョン情報を表示",
		"framecast version %s":                           "framecast バージョン %s",

		// Output flags
		"YAML configuration file":                            "YAML設定ファイル",
		"Output video file path":                             "出力動画ファイルパス",
		"Audio track to mux into the video":                  "動画に多重化する音声トラック",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",

		// Composition flags
		"Composition id":                             "コンポジションID",
		"Size preset (hd, fullhd, vertical, square)": "サイズプリセット（hd, fullhd, vertical, square）",
		"Frame width in pixels":                      "フレームの幅（ピクセル）",
		"Frame height in pixels":                     "フレームの高さ（ピクセル）",
		"Frames per second":                          "フレームレート（fps）",
		"Number of frames to render":                 "レンダリングするフレーム数",
		"Duration in seconds (alternative to --frames)":     "再生時間（秒、--frames の代替）",
		"Expected number of frames (0 = highest index + 1)": "期待するフレーム数（0 = 最大インデックス + 1）",

		// Capture flags
		"Frame image format (png, jpeg)":                 "フレーム画像形式（png, jpeg）",
		"JPEG quality (0-100)":                           "JPEG品質（0-100）",
		"CSS selector of the element to capture":         "キャプチャする要素のCSSセレクタ",
		"Script polled until it returns true":            "trueを返すまでポーリングするスクリプト",
		"Readiness timeout in milliseconds":              "準備完了待ちのタイムアウト（ミリ秒）",
		"Number of browser instances (0 = auto)":         "ブラウザインスタンス数（0 = 自動）",
		"Retries per frame on a fresh browser instance":  "新しいブラウザインスタンスでのフレームごとの再試行回数",
		"Failure policy (fail-fast, complete-then-fail)": "失敗時の方針（fail-fast, complete-then-fail）",
		"Directory for frame images":                     "フレーム画像のディレクトリ",
		"Keep frame images after stitching":              "結合後もフレーム画像を残す",

		// Browser flags
		"Browser backend (chromedp, playwright)":       "ブラウザバックエンド（chromedp, playwright）",
		"Run browser in non-headless mode":             "ブラウザを非ヘッドレスモードで実行",
		"Path to Chrome executable":                    "Chrome実行ファイルのパス",
		"Ignore HTTPS certificate errors":              "HTTPS証明書エラーを無視",
		"HTTP proxy server (e.g., http://proxy:8080)":  "HTTPプロキシサーバー（例: http://proxy:8080）",
		"Download Chromium for the playwright backend": "playwrightバックエンド用のChromiumをダウンロード",

		// Video flags
		"Quality preset (low, medium, high)":                          "品質プリセット（low, medium, high）",
		"Video CRF value (lower is better, overrides quality preset)": "動画のCRF値（低いほど高品質、品質プリセットを上書き）",
		"Video CRF value (lower is better)":                           "動画のCRF値（低いほど高品質）",
		"Video codec passed to ffmpeg":                                "ffmpegに渡す動画コーデック",
		"Pixel format passed to ffmpeg":                               "ffmpegに渡すピクセル形式",
		"Path to ffmpeg executable":                                   "ffmpeg実行ファイルのパス",

		// Resume and publishing flags
		"Reuse frames captured by an interrupted run": "中断された実行でキャプチャ済みのフレームを再利用",
		"Directory of the run ledger":                 "実行台帳のディレクトリ",
		"Keep the run ledger in Redis at this address": "実行台帳を保持する Redis のアドレス",
		"Publish backend (s3, gcs)":                   "公開先バックエンド（s3, gcs）",
		"Bucket to publish to":                        "公開先のバケット",
		"Object key of the published video":           "公開する動画のオブジェクトキー",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力のディレクトリ",
		"Serve Prometheus metrics on this address (e.g., :9090)": "このアドレスでPrometheusメトリクスを公開（例: :9090）",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Probe output
		"Recommended concurrency: %d": "推奨並列数: %d",
		"Chrome: %s":                  "Chrome: %s",
		"ffmpeg: %s":                  "ffmpeg: %s",
		"ffmpeg version: %s":          "ffmpeg バージョン: %s",
		"not found":                   "見つかりません",

		// Summary output
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"Render Summary":  "レンダリングサマリー",
		"Generated at":    "生成日時",
		"Item":            "項目",
		"Value":           "値",
		"URL":             "URL",
		"Run ID":          "実行ID",
		"Status":          "状態",
		"Succeeded":       "成功",
		"Failed":          "失敗",
		"Size":            "サイズ",
		"Frame Rate":      "フレームレート",
		"Frames":          "フレーム数",
		"Concurrency":     "並列数",
		"Captured":        "キャプチャ数",
		"Resumed":         "再利用数",
		"Capture Time":    "キャプチャ時間",
		"Stitch Time":     "結合時間",
		"Failures":        "失敗",
		"Failed Frames":   "失敗したフレーム",
		"Error":           "エラー",
		"Settings":        "設定",
		"Quality":         "品質",
		"Frame Format":    "フレーム形式",
		"Codec":           "コーデック",
		"Pixel Format":    "ピクセル形式",
		"Retries":         "再試行回数",
		"Failure Policy":  "失敗時の方針",
		"Video":           "動画",
		"Duration":        "再生時間",
		"File Size":       "ファイルサイズ",
		"Container Size":  "コンテナ上のサイズ",
		"Container Codec": "コンテナ上のコーデック",
		"Samples":         "サンプル数",
		"Published":       "公開先",
	})
}

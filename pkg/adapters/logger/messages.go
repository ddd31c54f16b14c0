package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Processing %s...":                    "%s を処理中...",
		"Saved %d stills to %s":               "%d 枚の静止画を %s に保存しました",
		"No videos found in %s":               "%s に動画が見つかりません",
		"Run completed: %d videos, %d stills": "実行完了: 動画 %d 本, 静止画 %d 枚",
		"Summary written to %s":               "サマリーを %s に書き出しました",
		"Interrupted, shutting down...":       "中断されました。シャットダウン中...",
		"Cleared %d files from %s":            "%d 個のファイルを %s から削除しました",
		"Loaded config from %s":               "%s から設定を読み込みました",

		// Probe stage
		"Duration %.3fs from %s":                       "長さ %.3f 秒 (%s)",
		"No declared duration, decoding to last frame": "長さの情報がないため最終フレームまでデコードします",
		"Decoded %d frames":                            "%d フレームをデコードしました",

		// Extract stage
		"Still %d: target %.3fs (pts %d)":         "静止画 %d: 目標 %.3f 秒 (pts %d)",
		"Still %d: picked pts %d after %d frames": "静止画 %[1]d: %[3]d フレーム走査後に pts %[2]d を選択",

		// Sample stage
		"Sampling %d stills with %d workers": "%d 枚の静止画を %d ワーカーで抽出中",

		// Demuxer selection
		"Opening %s with %s demuxer":                             "%s を %s デマルチプレクサで開きます",
		"Native demux failed for %s, falling back to ffmpeg: %v": "%s のネイティブ解析に失敗したため ffmpeg に切り替えます: %v",

		// Contact sheet
		"Contact sheet saved for %s": "%s のコンタクトシートを保存しました",

		// Errors
		"Failed to sample %s: %v":          "%s の抽出に失敗しました: %v",
		"Failed to write debug output: %v": "デバッグ出力の書き込みに失敗しました: %v",
	})
}

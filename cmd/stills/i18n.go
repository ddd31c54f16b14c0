// Package main provides localization for the stills CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Extract still frames from videos at evenly spaced timestamps.": "動画から等間隔のタイムスタンプで静止画を抽出します。",

		// Version command
		"stills version %s": "stills バージョン %s",

		// Runtime messages
		"Failed to write summary: %v": "サマリーの書き込みに失敗しました: %v",

		// Summary content
		"Sampling Summary":          "サンプリング結果",
		"Run":                       "実行",
		"Item":                      "項目",
		"Value":                     "値",
		"Step":                      "ステップ",
		"Input":                     "入力",
		"Output":                    "出力",
		"Stills per video":          "動画あたりの静止画数",
		"Videos":                    "動画",
		"Stills written":            "書き出した静止画",
		"Files cleared":             "削除したファイル",
		"Elapsed":                   "所要時間",
		"Settings":                  "設定",
		"Workers":                   "ワーカー数",
		"Format":                    "形式",
		"Demuxer":                   "デマルチプレクサ",
		"Max width":                 "最大幅",
		"Native":                    "元のサイズ",
		"No videos were processed.": "処理した動画はありません。",
		"Video":                     "動画",
		"Duration":                  "長さ",
		"Duration source":           "長さの取得元",
		"Stills":                    "静止画",
		"metadata":                  "メタデータ",
		"decode":                    "デコード",
		"Generated at":              "生成日時",
	})
}

package domain

import "sort"

// WordTiming はナレーション音声中の1単語の位置と発声時刻を保持します。
// CharStart / CharEnd はクリーンテキスト（マーカー注入前）の文字インデックスです。
type WordTiming struct {
	Word      string  `json:"word"`
	CharStart int     `json:"charStart"`
	CharEnd   int     `json:"charEnd"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// MarkerOffset は表現マーカー1個の挿入位置と、その直後までの累積オフセットです。
type MarkerOffset struct {
	CleanPos   int // クリーンテキスト側の挿入位置（文字インデックス）
	Cumulative int // この挿入を含めた累積のずれ幅
}

// AnnotationOffsetMap はクリーンテキストの文字位置を注釈付きテキストの
// 文字位置へ変換するためのオフセット表なのだ。CleanPos 昇順を前提とします。
type AnnotationOffsetMap []MarkerOffset

// AnnotatedIndex はクリーンテキストの文字位置 cleanPos に対応する
// 注釈付きテキスト側の文字位置を返すのだ。
// CleanPos <= cleanPos を満たす最後のエントリの累積オフセットを加算します。
func (m AnnotationOffsetMap) AnnotatedIndex(cleanPos int) int {
	// 「CleanPos > cleanPos となる最初の位置」を二分探索し、その1つ前を採用するのだ
	i := sort.Search(len(m), func(i int) bool {
		return m[i].CleanPos > cleanPos
	})
	if i == 0 {
		return cleanPos
	}
	return cleanPos + m[i-1].Cumulative
}

// CharacterAlignment は音声合成プロバイダが返す文字単位のタイムスタンプです。
// 3つのスライスは同じ長さで、注釈付きテキストの文字列に対応します。
type CharacterAlignment struct {
	Characters []string  `json:"characters"`
	StartTimes []float64 `json:"character_start_times_seconds"`
	EndTimes   []float64 `json:"character_end_times_seconds"`
}

// NarrationResult は音声合成と単語タイミング整列の最終成果物です。
type NarrationResult struct {
	Audio       []byte       `json:"-"`
	AudioBase64 string       `json:"audio"`
	MIMEType    string       `json:"mimeType"`
	WordTimings []WordTiming `json:"wordTimings"`
}

// Package storage は生成された画像・音声バイト列の永続化を抽象化します。
// オーケストレータはこの抽象だけに依存し、具体的な保存先
// （MinIO / GCS / ローカル）は組み立て時に注入されるのだ。
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// BlobStore はバイト列を保存し、参照可能なURLを返すインターフェースです。
type BlobStore interface {
	Put(ctx context.Context, data []byte, mimeType, folderHint string) (string, error)
}

// DataURL はアップロードに失敗した際のフォールバックとして、
// バイト列を base64 データURLに変換するのだ。
func DataURL(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// contentKey はバイト列の内容から決定論的なオブジェクト名を導出します。
// 同じ画像を2回アップロードしても同じキーになるため、重複排除に使えるのだ。
func contentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// extensionForMIME は MIME タイプから保存用の拡張子を決めるヘルパーなのだ。
func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "audio/mpeg":
		return ".mp3"
	case "image/png":
		return ".png"
	default:
		return ".bin"
	}
}

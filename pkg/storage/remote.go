package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// WriterStore は remoteio.OutputWriter（ローカルファイル / GCS）を
// 保存先として使う BlobStore 実装です。CLI からの実行で使うのだ。
type WriterStore struct {
	writer  remoteio.OutputWriter
	baseDir string
}

// NewWriterStore は baseDir 配下に書き出すストアを生成します。
func NewWriterStore(writer remoteio.OutputWriter, baseDir string) *WriterStore {
	return &WriterStore{writer: writer, baseDir: baseDir}
}

// Put はバイト列をファイルとして書き出し、その保存先パスを返します。
func (s *WriterStore) Put(ctx context.Context, data []byte, mimeType, folderHint string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("空のデータは保存できないのだ")
	}

	fullPath := path.Join(s.baseDir, folderHint, contentKey(data)+extensionForMIME(mimeType))
	if err := s.writer.Write(ctx, fullPath, bytes.NewReader(data), mimeType); err != nil {
		return "", fmt.Errorf("ファイルの書き出しに失敗したのだ (path=%s): %w", fullPath, err)
	}
	return fullPath, nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// MinioConfig は MinIO / S3互換ストレージへの接続設定です。
type MinioConfig struct {
	Endpoint        string // 例: "https://minio.example.com" または "localhost:9000"
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	URLExpiry       time.Duration // 署名付きURLの有効期間（ゼロなら7日）
}

// minioAPI は minio.Client のうち利用する操作だけを切り出したインターフェースなのだ。
type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// MinioStore は MinIO バケットに保存して署名付きURLを返す BlobStore 実装です。
// 同一内容の再アップロードはキャッシュと singleflight で抑止するのだ。
type MinioStore struct {
	api       minioAPI
	bucket    string
	urlExpiry time.Duration

	urlCache *gocache.Cache
	group    singleflight.Group
}

// NewMinioStore はバケットの存在確認（無ければ作成）まで済ませたストアを返します。
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("MinIOエンドポイントの解析に失敗したのだ: %w", err)
	}

	endpoint := u.Host
	if endpoint == "" {
		// スキーム無しの "host:port" 形式で渡された場合
		endpoint = cfg.Endpoint
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("MinIOクライアントの生成に失敗したのだ: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("バケットの存在確認に失敗したのだ: %w", err)
	}
	if !exists {
		slog.Info("バケットが無いので作成するのだ", "bucket", cfg.BucketName)
		if err := client.MakeBucket(checkCtx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("バケットの作成に失敗したのだ: %w", err)
		}
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}

	return &MinioStore{
		api:       client,
		bucket:    cfg.BucketName,
		urlExpiry: expiry,
		// 署名付きURLは有効期限より手前で破棄して再発行するのだ
		urlCache: gocache.New(expiry/2, 10*time.Minute),
	}, nil
}

// Put はバイト列をアップロードし、署名付きの参照URLを返します。
// 同じ内容は同じオブジェクト名になるため、2回目以降はキャッシュが返るのだ。
func (s *MinioStore) Put(ctx context.Context, data []byte, mimeType, folderHint string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("空のデータはアップロードできないのだ")
	}

	objectName := path.Join(folderHint, contentKey(data)+extensionForMIME(mimeType))
	if cached, found := s.urlCache.Get(objectName); found {
		return cached.(string), nil
	}

	// 同一オブジェクトへの同時アップロードは1回に束ねるのだ
	result, err, _ := s.group.Do(objectName, func() (interface{}, error) {
		if cached, found := s.urlCache.Get(objectName); found {
			return cached.(string), nil
		}

		reader := bytes.NewReader(data)
		if _, err := s.api.PutObject(ctx, s.bucket, objectName, reader, int64(len(data)), minio.PutObjectOptions{
			ContentType: mimeType,
		}); err != nil {
			return nil, fmt.Errorf("オブジェクトのアップロードに失敗したのだ: %w", err)
		}

		presigned, err := s.api.PresignedGetObject(ctx, s.bucket, objectName, s.urlExpiry, url.Values{})
		if err != nil {
			return nil, fmt.Errorf("署名付きURLの発行に失敗したのだ: %w", err)
		}

		urlStr := presigned.String()
		s.urlCache.Set(objectName, urlStr, gocache.DefaultExpiration)
		slog.Debug("オブジェクトをアップロードしたのだ", "object", objectName, "bytes", len(data))
		return urlStr, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

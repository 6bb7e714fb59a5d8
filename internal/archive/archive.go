// Package archive copies finished diagnosis reports to object storage for
// offline review. Archiving is best effort and entirely optional; a session
// never fails because the archive is down.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"leakbox/internal/analysis"
	"leakbox/internal/wizard"
)

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store writes one JSON object per archived report.
type Store struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

// New returns (nil, nil) when no endpoint is configured; a nil *Store is a
// valid disabled archive.
func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, nil
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("archive: access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("archive: bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: init client: %w", err)
	}
	return &Store{client: client, bucket: bucket, region: region}, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// record is the archived shape: the answers minus photo payloads, plus the
// validated result.
type record struct {
	SessionID  string            `json:"sessionId"`
	ArchivedAt time.Time         `json:"archivedAt"`
	Answers    *wizard.AnswerSet `json:"answers"`
	PhotoCount int               `json:"photoCount"`
	Result     *analysis.Result  `json:"result"`
}

// SaveReport archives one finished report. Safe to call on a nil store.
func (s *Store) SaveReport(ctx context.Context, sessionID string, a *wizard.AnswerSet, res *analysis.Result) error {
	if s == nil {
		return nil
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("archive: ensure bucket: %w", err)
	}

	slim := *a
	slim.Photos = nil
	rec := record{
		SessionID:  sessionID,
		ArchivedAt: time.Now().UTC(),
		Answers:    &slim,
		PhotoCount: len(a.Photos),
		Result:     res,
	}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("archive: encode report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%s.json", rec.ArchivedAt.Format("2006-01-02"), sessionID)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("archive: put report: %w", err)
	}
	log.Printf("archive: stored report %s", key)
	return nil
}

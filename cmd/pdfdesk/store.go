package main

import (
	"github.com/vango-dev/pdfdesk/internal/config"
	"github.com/vango-dev/pdfdesk/pkg/artifact"
)

func s3Store(cfg *config.Config) *artifact.S3Store {
	s3cfg := artifact.S3Config{
		Bucket:       cfg.Storage.Bucket,
		Prefix:       cfg.Storage.Prefix,
		Region:       cfg.Storage.Region,
		Endpoint:     cfg.Storage.Endpoint,
		UsePathStyle: cfg.Storage.PathStyle,
		URLExpiry:    cfg.Storage.URLExpiry,
	}
	return artifact.NewS3Store(artifact.NewS3Client(s3cfg), s3cfg)
}

// newDownloadStore returns where `pdfdesk upload` saves documents: the
// download folder, or the bucket.
func newDownloadStore(cfg *config.Config) (artifact.Store, error) {
	if cfg.Storage.Driver == config.DriverS3 {
		return s3Store(cfg), nil
	}
	return artifact.NewFolder(cfg.Storage.Dir)
}

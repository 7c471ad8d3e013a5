package s3_helper

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/danthegoodman1/chfdw/gologger"
	"github.com/danthegoodman1/chfdw/utils"
	"github.com/rs/zerolog"
)

var (
	logger = gologger.NewLogger()
)

type (
	// Uploader writes export files to the configured bucket.
	Uploader struct {
		Bucket   string
		uploader *s3manager.Uploader
	}
)

// NewUploader builds an uploader from the AWS_* and S3_* environment.
func NewUploader() (*Uploader, error) {
	s3Config := &aws.Config{
		Region:      aws.String(utils.AWS_DEFAULT_REGION),
		Credentials: credentials.NewEnvCredentials(),
	}
	if utils.S3_ENDPOINT != "" {
		s3Config.Endpoint = aws.String(utils.S3_ENDPOINT)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	s3Session, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}

	logger.Debug().Str("bucket", utils.S3_BUCKET_NAME).Str("region", utils.AWS_DEFAULT_REGION).Msg("created s3 uploader")
	return &Uploader{
		Bucket:   utils.S3_BUCKET_NAME,
		uploader: s3manager.NewUploader(s3Session),
	}, nil
}

func (u *Uploader) WriteFile(ctx context.Context, fileName string, byteStream io.Reader, contentType *string) error {
	logger := zerolog.Ctx(ctx)

	input := &s3manager.UploadInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(fileName),
		Body:        byteStream,
		ContentType: contentType,
	}

	s := time.Now()
	_, err := u.uploader.UploadWithContext(ctx, input)
	if err != nil {
		return fmt.Errorf("error uploading to s3: %w", err)
	}

	d := time.Since(s)
	logger.Debug().Str("fileName", fileName).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("uploaded file to s3")

	return nil
}

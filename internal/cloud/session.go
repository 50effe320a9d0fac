package cloud

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/mgpai22/reelsubs/internal/config"
)

// AWS service clients shared by the storage tier and the Lambda transcriber
type Clients struct {
	Session *session.Session
	S3      s3iface.S3API
	Lambda  lambdaiface.LambdaAPI
}

// NewSession builds an AWS session for cfg. Explicit keys win; without
// them the SDK default chain (env, shared config, instance role) is used.
func NewSession(cfg config.AWSConfig) (*session.Session, error) {
	if cfg.Region == "" {
		return nil, errors.New("aws region is required")
	}

	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
			return nil, errors.New("both aws access key id and secret access key must be set")
		}
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""))
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return sess, nil
}

func NewClients(cfg config.AWSConfig) (*Clients, error) {
	sess, err := NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return &Clients{
		Session: sess,
		S3:      s3.New(sess),
		Lambda:  lambda.New(sess),
	}, nil
}

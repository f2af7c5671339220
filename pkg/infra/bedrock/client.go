package bedrock

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	defaultRegion      = "us-east-1"
	defaultSessionName = "RealtimeGatewaySession"
)

type RuntimeClient interface {
	ConverseStream(
		ctx context.Context,
		params *bedrockruntime.ConverseStreamInput,
		optFns ...func(*bedrockruntime.Options),
	) (*bedrockruntime.ConverseStreamOutput, error)
}

type Credentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	RoleARN      string
}

func (c Credentials) key() string {
	return fmt.Sprintf("%s:%s:%s", c.AccessKey, c.regionOrDefault(), c.RoleARN)
}

func (c Credentials) regionOrDefault() string {
	if c.Region == "" {
		return defaultRegion
	}
	return c.Region
}

// Client builds bedrock runtime clients, one per credential set.
type Client interface {
	BuildClient(ctx context.Context, creds Credentials) (RuntimeClient, error)
}

type client struct {
	logger  *logrus.Logger
	clients sync.Map
	sf      singleflight.Group
}

func NewClient(logger *logrus.Logger) Client {
	return &client{logger: logger}
}

func (c *client) BuildClient(ctx context.Context, creds Credentials) (RuntimeClient, error) {
	key := creds.key()
	if v, ok := c.clients.Load(key); ok {
		if rc, ok := v.(*bedrockruntime.Client); ok {
			return rc, nil
		}
	}
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if v, ok := c.clients.Load(key); ok {
			return v, nil
		}
		cfg, err := buildAwsConfig(ctx, creds)
		if err != nil {
			if c.logger != nil {
				c.logger.WithError(err).Error("failed to load AWS config")
			}
			return nil, err
		}
		rc := bedrockruntime.NewFromConfig(cfg)
		c.clients.Store(key, rc)
		return rc, nil
	})
	if err != nil {
		return nil, err
	}
	rc, ok := v.(*bedrockruntime.Client)
	if !ok {
		return nil, fmt.Errorf("invalid client type in pool")
	}
	return rc, nil
}

func buildAwsConfig(ctx context.Context, creds Credentials) (aws.Config, error) {
	region := creds.regionOrDefault()
	if creds.RoleARN == "" {
		return loadAWSConfig(ctx, creds.AccessKey, creds.SecretKey, creds.SessionToken, region)
	}
	baseCfg, err := loadAWSConfig(ctx, creds.AccessKey, creds.SecretKey, creds.SessionToken, region)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load base AWS config: %w", err)
	}
	out, err := sts.NewFromConfig(baseCfg).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(creds.RoleARN),
		RoleSessionName: aws.String(defaultSessionName),
	})
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to assume role: %w", err)
	}
	return loadAWSConfig(ctx,
		aws.ToString(out.Credentials.AccessKeyId),
		aws.ToString(out.Credentials.SecretAccessKey),
		aws.ToString(out.Credentials.SessionToken),
		region,
	)
}

// loadAWSConfig uses static keys when given and the default chain otherwise.
func loadAWSConfig(ctx context.Context, accessKey, secretKey, sessionToken, region string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     accessKey,
					SecretAccessKey: secretKey,
					SessionToken:    sessionToken,
				}, nil
			},
		)))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

package receipts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v2/log"

	"github.com/CourseHubApp/CourseHub/app/models"
)

// Client wraps the S3 client with receipt-archive functionality
type Client struct {
	s3Client *s3.Client
	config   *Config
}

// Receipt is the archived record of a completed payment. It is written
// once per payment and never updated.
type Receipt struct {
	PaymentID  string    `json:"payment_id"`
	UserID     uint      `json:"user_id"`
	CourseID   uint      `json:"course_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	PaidAt     time.Time `json:"paid_at"`
	ArchivedAt time.Time `json:"archived_at"`
}

// NewClient creates a new receipt archive client
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("receipt archiving is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible services need path style
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	client := &Client{
		s3Client: s3Client,
		config:   cfg,
	}

	if err := client.testConnection(); err != nil {
		return nil, fmt.Errorf("failed to connect to S3: %w", err)
	}

	log.Infof("[Receipts] Successfully initialized S3 client for bucket: %s", cfg.GetBucketName())
	return client, nil
}

// testConnection tests the S3 connection by checking if the bucket exists
func (c *Client) testConnection() error {
	ctx := context.Background()
	bucketName := c.config.GetBucketName()

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})

	if err != nil {
		// If bucket doesn't exist, try to create it (for development)
		if GetAppEnv() != "prod" {
			log.Warnf("[Receipts] Bucket %s not found, attempting to create it", bucketName)
			return c.createBucket(bucketName)
		}
		return fmt.Errorf("bucket %s not accessible: %w", bucketName, err)
	}

	return nil
}

// createBucket creates a new S3 bucket (dev/staging only)
func (c *Client) createBucket(bucketName string) error {
	ctx := context.Background()

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	}

	// For AWS regions other than us-east-1 we need the location constraint;
	// S3-compatible endpoints must not set one
	if c.config.EndpointURL == "" && c.config.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.config.Region),
		}
	}

	_, err := c.s3Client.CreateBucket(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}

	log.Infof("[Receipts] Successfully created bucket: %s", bucketName)
	return nil
}

// BuildReceipt converts a payment row into its archival form
func BuildReceipt(payment *models.PaymentRecord) Receipt {
	return Receipt{
		PaymentID:  payment.PaymentID,
		UserID:     payment.UserID,
		CourseID:   payment.CourseID,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		Method:     payment.Method,
		Status:     payment.Status,
		PaidAt:     payment.CreatedAt,
		ArchivedAt: time.Now().UTC(),
	}
}

// ArchiveReceipt uploads a receipt as JSON to the archive bucket
func (c *Client) ArchiveReceipt(ctx context.Context, receipt Receipt) (string, error) {
	bucketName := c.config.GetBucketName()
	objectKey := c.config.GetObjectKey(receipt.PaymentID, receipt.PaidAt)

	body, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt %s: %w", receipt.PaymentID, err)
	}

	_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
		Metadata: map[string]string{
			"payment-id":    receipt.PaymentID,
			"upload-source": "coursehub-receipts",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt to S3: %w", err)
	}

	log.Infof("[Receipts] Archived receipt %s to s3://%s/%s", receipt.PaymentID, bucketName, objectKey)
	return objectKey, nil
}

// ReceiptExists checks whether a receipt has already been archived
func (c *Client) ReceiptExists(ctx context.Context, paymentID string, paidAt time.Time) (bool, error) {
	bucketName := c.config.GetBucketName()
	objectKey := c.config.GetObjectKey(paymentID, paidAt)

	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check receipt existence: %w", err)
	}

	return true, nil
}

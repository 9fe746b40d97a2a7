package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/internal/pkg/database"
	"github.com/CourseHubApp/CourseHub/internal/pkg/receipts"
)

// processReceiptArchiveJob archives the receipt for a completed payment to S3.
// Archiving is idempotent: re-uploading the same payment overwrites the same
// object key, so replayed jobs are harmless.
func (q *Queue) processReceiptArchiveJob(ctx context.Context, job *Job) error {
	payload, err := ReceiptArchiveJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse receipt archive job payload: %w", err)
	}

	log.Infof("[Receipts] Processing receipt archive job for payment %s", payload.PaymentID)

	config, err := receipts.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load receipt archive config: %w", err)
	}

	if !config.IsEnabled() {
		log.Debugf("[Receipts] Archiving disabled, skipping payment %s", payload.PaymentID)
		return nil
	}

	client, err := receipts.NewClient(config)
	if err != nil {
		return fmt.Errorf("failed to create receipt archive client: %w", err)
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var payment models.PaymentRecord
	if err := db.Where("payment_id = ?", payload.PaymentID).First(&payment).Error; err != nil {
		return fmt.Errorf("failed to load payment %s: %w", payload.PaymentID, err)
	}

	if !payment.IsCompleted() {
		// Only completed payments get receipts; a pending payment will be
		// re-enqueued when its status transition lands
		log.Warnf("[Receipts] Payment %s is %s, skipping receipt", payment.PaymentID, payment.Status)
		return nil
	}

	objectKey, err := client.ArchiveReceipt(ctx, receipts.BuildReceipt(&payment))
	if err != nil {
		return fmt.Errorf("failed to archive receipt for %s: %w", payment.PaymentID, err)
	}

	log.Infof("[Receipts] Receipt for payment %s archived at %s", payment.PaymentID, objectKey)
	return nil
}

// EnqueueReceiptArchiveJob creates and enqueues a receipt archive job
func (q *Queue) EnqueueReceiptArchiveJob(paymentID string, userID, courseID uint) (*Job, error) {
	payload := ReceiptArchiveJobPayload{
		PaymentID: paymentID,
		UserID:    userID,
		CourseID:  courseID,
	}

	return q.EnqueueJob(JobTypeReceiptArchive, payload.ToMap())
}

// EnqueueReceiptArchive enqueues a receipt archive job for a payment on the
// global queue.
func EnqueueReceiptArchive(payment *models.PaymentRecord) error {
	_, err := GetManager().GetQueue().EnqueueReceiptArchiveJob(payment.PaymentID, payment.UserID, payment.CourseID)
	return err
}

package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/briefcast/internal/connectors/google"
	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/logger"
)

// SourceName identifies this fetcher in summaries and configuration.
const SourceName = "gmail"

const gmailUser = "me"

// Fetcher pulls recent email attachments through the Gmail API.
type Fetcher struct {
	svc     *gmail.Service
	cfg     Config
	limiter *google.RateLimiter
}

// NewFetcher wraps a Gmail service as a document fetcher.
func NewFetcher(svc *gmail.Service, cfg Config) *Fetcher {
	cfg.applyDefaults()
	return &Fetcher{
		svc:     svc,
		cfg:     cfg,
		limiter: google.NewRateLimiter(google.ServiceGmail),
	}
}

// Source implements driven.Fetcher.
func (f *Fetcher) Source() string { return SourceName }

// Fetch lists messages with attachments received since the given time
// and returns one document per supported attachment. A window with no
// matching attachments yields an empty slice and no error.
func (f *Fetcher) Fetch(ctx context.Context, since time.Time) ([]domain.Document, error) {
	query := buildQuery(since, f.cfg.Query)
	logger.Debug("gmail: listing messages with query %q", query)

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	list, err := f.svc.Users.Messages.List(gmailUser).
		Q(query).
		MaxResults(f.cfg.MaxResults).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", google.WrapError(err))
	}

	var docs []domain.Document
	for _, ref := range list.Messages {
		msgDocs, err := f.fetchMessage(ctx, ref.Id)
		if err != nil {
			// A single unreadable message should not sink the batch.
			logger.Warn("gmail: skipping message %s: %v", ref.Id, err)
			continue
		}
		docs = append(docs, msgDocs...)
	}

	logger.Info("gmail: fetched %d attachment(s) from %d message(s)", len(docs), len(list.Messages))
	return docs, nil
}

func (f *Fetcher) fetchMessage(ctx context.Context, messageID string) ([]domain.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	msg, err := f.svc.Users.Messages.Get(gmailUser, messageID).
		Format("full").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message: %w", google.WrapError(err))
	}

	subject := headerValue(msg.Payload.Headers, "Subject")
	received := time.UnixMilli(msg.InternalDate)

	parts := collectAttachmentParts(msg.Payload, f.cfg.SupportedAttachments)
	docs := make([]domain.Document, 0, len(parts))
	for _, part := range parts {
		content, err := f.downloadAttachment(ctx, messageID, part.Body.AttachmentId)
		if err != nil {
			logger.Warn("gmail: skipping attachment %q on message %s: %v", part.Filename, messageID, err)
			continue
		}

		docs = append(docs, domain.Document{
			Source:    SourceName,
			Title:     attachmentTitle(part.Filename, subject),
			Content:   content,
			MIMEType:  part.MimeType,
			URL:       attachmentURL(messageID, part.Body.AttachmentId),
			Timestamp: received,
			Metadata: map[string]any{
				"message_id": messageID,
				"subject":    subject,
				"filename":   part.Filename,
				"from":       headerValue(msg.Payload.Headers, "From"),
			},
		})
	}
	return docs, nil
}

func (f *Fetcher) downloadAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := f.svc.Users.Messages.Attachments.Get(gmailUser, messageID, attachmentID).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", google.WrapError(err))
	}

	content, err := base64.URLEncoding.DecodeString(body.Data)
	if err != nil {
		return nil, fmt.Errorf("decode attachment body: %w", err)
	}
	return content, nil
}

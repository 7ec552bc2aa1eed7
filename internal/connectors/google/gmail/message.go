package gmail

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
)

// buildQuery assembles the Gmail search query for a fetch window.
// Gmail's after: operator takes dates in YYYY/MM/DD local time.
func buildQuery(since time.Time, extra string) string {
	query := fmt.Sprintf("after:%s has:attachment", since.Format("2006/01/02"))
	if extra != "" {
		query += " " + extra
	}
	return query
}

// collectAttachmentParts walks a message payload tree and returns the
// parts that carry a downloadable attachment with a supported MIME type.
func collectAttachmentParts(part *gmail.MessagePart, supported []string) []*gmail.MessagePart {
	if part == nil {
		return nil
	}

	var matches []*gmail.MessagePart
	if isAttachment(part) && isSupportedMIME(part.MimeType, supported) {
		matches = append(matches, part)
	}
	for _, child := range part.Parts {
		matches = append(matches, collectAttachmentParts(child, supported)...)
	}
	return matches
}

// isAttachment reports whether a part is a real attachment rather than
// an inline body part.
func isAttachment(part *gmail.MessagePart) bool {
	return part.Filename != "" && part.Body != nil && part.Body.AttachmentId != ""
}

func isSupportedMIME(mimeType string, supported []string) bool {
	for _, s := range supported {
		if strings.EqualFold(strings.TrimSpace(s), mimeType) {
			return true
		}
	}
	return false
}

// headerValue returns the first header with the given name, case-insensitively.
func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// attachmentTitle names a document after its attachment, falling back
// to the message subject when the filename is empty of meaning.
func attachmentTitle(filename, subject string) string {
	base := strings.TrimSpace(filename)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base != "" {
		return base
	}
	if subject != "" {
		return subject
	}
	return "attachment"
}

// attachmentURL builds the stable identity URL for an attachment.
func attachmentURL(messageID, attachmentID string) string {
	return fmt.Sprintf("gmail://messages/%s/attachments/%s", messageID, attachmentID)
}

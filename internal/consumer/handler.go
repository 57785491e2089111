package consumer

import (
	"encoding/json"
	"errors"

	"github.com/emrahsandernet/kasarcim/internal/model"

	"go.uber.org/zap"
)

type EmailSender interface {
	SendEmail(msg model.EmailMessage) error
}

var errBadMessage = errors.New("malformed email message")

// deliver decodes one queued message and hands it to the sender. Malformed messages
// return errBadMessage so transports can drop them instead of retrying.
func deliver(s EmailSender, log *zap.Logger, body []byte) error {
	var em model.EmailMessage
	if err := json.Unmarshal(body, &em); err != nil {
		log.Error("unmarshal email message", zap.ByteString("value", body), zap.Error(err))
		return errBadMessage
	}
	if !em.Valid() {
		log.Warn("invalid email message", zap.String("to", em.To), zap.String("template", em.Template))
		return errBadMessage
	}
	if err := s.SendEmail(em); err != nil {
		log.Error("send email failed", zap.String("to", em.To), zap.String("template", em.Template), zap.Error(err))
		return err
	}
	log.Info("email sent", zap.String("to", em.To), zap.String("template", em.Template))
	return nil
}

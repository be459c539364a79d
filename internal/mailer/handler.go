package mailer

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/glowdesk/business_service/internal/dto"
)

type MailHandler struct {
	MailService *MailService
}

func NewMailHandler(ms *MailService) *MailHandler {
	return &MailHandler{MailService: ms}
}

func (h *MailHandler) HandleMessage(message string) error {
	var event dto.MailEvent

	if err := json.Unmarshal([]byte(message), &event); err != nil {
		log.Printf("invalid event payload: %s\n", message)
		return err
	}

	log.Printf("mail event received: kind=%s business_id=%d email=%s",
		event.Kind, event.BusinessID, event.Email)

	switch event.Kind {
	case dto.MailKindWelcome:
		return h.MailService.SendWelcome(event.Email, event.Name)
	case dto.MailKindVerifyEmail:
		return h.MailService.SendVerifyEmail(event.Email, event.Name, event.BusinessID, event.Token)
	case dto.MailKindResetPassword:
		return h.MailService.SendResetPassword(event.Email, event.Name, event.Token)
	case dto.MailKindEmbedCode:
		return h.MailService.SendEmbedCode(event.Email, event.Name, event.BusinessID)
	default:
		return fmt.Errorf("unknown mail event kind: %s", event.Kind)
	}
}

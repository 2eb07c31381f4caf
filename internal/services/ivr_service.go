package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"grievance-app/internal/models"
	"grievance-app/internal/repository"

	"github.com/twilio/twilio-go/twiml"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const gatherTimeout = "5"

// IVRService ведет звонок по четырем шагам: приветствие, номер бенефициара,
// номер счета, выбор опции. Каждый шаг отвечает TwiML-документом.
type IVRService struct {
	sessions   repository.SessionStore
	customers  CustomerRepository
	complaints ComplaintRepository
	sender     TextSender
}

func NewIVRService(sessions repository.SessionStore, customers CustomerRepository, complaints ComplaintRepository, sender TextSender) *IVRService {
	return &IVRService{
		sessions:   sessions,
		customers:  customers,
		complaints: complaints,
		sender:     sender,
	}
}

// Greeting — входная точка звонка; сюда же возвращает Redirect при молчании.
func (s *IVRService) Greeting() (string, error) {
	gather := &twiml.VoiceGather{
		Input:   "speech",
		Action:  "/process_beneficiary",
		Timeout: gatherTimeout,
		InnerElements: []twiml.Element{
			&twiml.VoiceSay{Message: "Welcome to Customer Support. Please say your Beneficiary Number."},
		},
	}
	return twiml.Voice([]twiml.Element{
		gather,
		&twiml.VoiceRedirect{Url: "/voice"},
	})
}

// ProcessBeneficiary запоминает произнесенный номер бенефициара как есть,
// без валидации, и спрашивает номер счета.
func (s *IVRService) ProcessBeneficiary(ctx context.Context, callSid, speech string) (string, error) {
	speech = strings.TrimSpace(speech)
	if _, err := s.sessions.Update(ctx, callSid, func(session *models.CallSession) {
		session.BeneficiaryNo = speech
	}); err != nil {
		return "", fmt.Errorf("update session: %w", err)
	}

	gather := &twiml.VoiceGather{
		Input:   "speech",
		Action:  "/process_account",
		Timeout: gatherTimeout,
		InnerElements: []twiml.Element{
			&twiml.VoiceSay{Message: "Thank you. Now say your Account Number."},
		},
	}
	return twiml.Voice([]twiml.Element{
		gather,
		&twiml.VoiceRedirect{Url: "/voice"},
	})
}

// ProcessAccount сверяет пару (beneficiary_no, account_number) с базой.
// Несовпадение — терминальное состояние: сессия удаляется, звонок завершается.
func (s *IVRService) ProcessAccount(ctx context.Context, callSid, speech string) (string, error) {
	speech = strings.TrimSpace(speech)
	session, err := s.sessions.Update(ctx, callSid, func(session *models.CallSession) {
		session.AccountNumber = speech
	})
	if err != nil {
		return "", fmt.Errorf("update session: %w", err)
	}

	customer, err := s.customers.FindByCredentials(ctx, session.BeneficiaryNo, speech)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if delErr := s.sessions.Delete(ctx, callSid); delErr != nil {
			log.Printf("Failed to evict session %s: %v", callSid, delErr)
		}
		return twiml.Voice([]twiml.Element{
			&twiml.VoiceSay{Message: "Verification failed. Please call again."},
			&twiml.VoiceHangup{},
		})
	}
	if err != nil {
		return "", fmt.Errorf("verify customer: %w", err)
	}

	if _, err := s.sessions.Update(ctx, callSid, func(session *models.CallSession) {
		session.Verified = true
		session.CustomerID = customer.ID.Hex()
		session.Name = customer.Name
		session.Phone = customer.Phone
	}); err != nil {
		return "", fmt.Errorf("update session: %w", err)
	}

	gather := &twiml.VoiceGather{
		Input:   "speech",
		Action:  "/process_option",
		Timeout: gatherTimeout,
		InnerElements: []twiml.Element{
			&twiml.VoiceSay{Message: fmt.Sprintf("Thanks %s. Say one to hear unresolved complaints or two to register a new complaint.", customer.Name)},
		},
	}
	return twiml.Voice([]twiml.Element{gather})
}

// ProcessOption обрабатывает выбор меню и завершает звонок.
// Оба исхода здесь терминальные, поэтому сессия удаляется в любом случае.
func (s *IVRService) ProcessOption(ctx context.Context, callSid, speech string) (string, error) {
	speech = strings.ToLower(strings.TrimSpace(speech))

	session, found, err := s.sessions.Get(ctx, callSid)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if !found || session.CustomerID == "" {
		if delErr := s.sessions.Delete(ctx, callSid); delErr != nil {
			log.Printf("Failed to evict session %s: %v", callSid, delErr)
		}
		return twiml.Voice([]twiml.Element{
			&twiml.VoiceSay{Message: "Session not found. Please call again."},
			&twiml.VoiceHangup{},
		})
	}

	var verbs []twiml.Element
	var smsText string

	switch ClassifyOption(speech) {
	case OptionHistory:
		customerID, err := primitive.ObjectIDFromHex(session.CustomerID)
		if err != nil {
			return "", fmt.Errorf("decode customer id: %w", err)
		}
		open, err := s.complaints.FindByCustomerAndStatus(ctx, customerID, models.StatusOpen)
		if err != nil {
			return "", fmt.Errorf("list open complaints: %w", err)
		}
		var text string
		if len(open) > 0 {
			issues := make([]string, 0, len(open))
			for _, c := range open {
				issues = append(issues, c.IssueType)
			}
			text = fmt.Sprintf("You have %d unresolved complaints: %s.", len(open), strings.Join(issues, ", "))
		} else {
			text = "You have no unresolved complaints."
		}
		verbs = append(verbs, &twiml.VoiceSay{Message: text})
		smsText = text

	case OptionNewComplaint:
		text := "To raise a new complaint, please use our website or mobile app."
		verbs = append(verbs, &twiml.VoiceSay{Message: text})
		smsText = text

	default:
		verbs = append(verbs, &twiml.VoiceSay{Message: "Sorry, I didn't understand your option."})
	}

	// Сбой доставки не должен ронять звонок — логируем и продолжаем.
	if session.Verified && session.Phone != "" && smsText != "" {
		if err := s.sender.SendText(ctx, session.Phone, "BOT: "+smsText); err != nil {
			log.Printf("SMS delivery failed for call %s: %v", callSid, err)
		}
	}

	if err := s.sessions.Delete(ctx, callSid); err != nil {
		log.Printf("Failed to evict session %s: %v", callSid, err)
	}

	verbs = append(verbs,
		&twiml.VoiceSay{Message: "Thank you for calling. Goodbye."},
		&twiml.VoiceHangup{},
	)
	return twiml.Voice(verbs)
}

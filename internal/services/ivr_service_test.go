package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"grievance-app/internal/models"
	"grievance-app/internal/repository"
)

func newIVRFixture() (*IVRService, *fakeCustomerRepo, *fakeComplaintRepo, *fakeSender, *repository.MemorySessionStore) {
	customers := &fakeCustomerRepo{}
	complaints := &fakeComplaintRepo{}
	sender := &fakeSender{}
	sessions := repository.NewMemorySessionStore(time.Minute)
	return NewIVRService(sessions, customers, complaints, sender), customers, complaints, sender, sessions
}

func seedCustomer(t *testing.T, customers *fakeCustomerRepo, beneficiaryNo, account, name, phone string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		BeneficiaryNo: beneficiaryNo,
		AccountNumber: account,
		Name:          name,
		Phone:         phone,
	}
	if err := customers.Insert(context.Background(), customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

// verifyCall проводит звонок до состояния AwaitingOption.
func verifyCall(t *testing.T, ivr *IVRService, callSid, beneficiaryNo, account string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := ivr.ProcessBeneficiary(ctx, callSid, beneficiaryNo); err != nil {
		t.Fatalf("ProcessBeneficiary: %v", err)
	}
	doc, err := ivr.ProcessAccount(ctx, callSid, account)
	if err != nil {
		t.Fatalf("ProcessAccount: %v", err)
	}
	return doc
}

func TestGreeting(t *testing.T) {
	ivr, _, _, _, _ := newIVRFixture()

	doc, err := ivr.Greeting()
	if err != nil {
		t.Fatalf("Greeting: %v", err)
	}
	if !strings.Contains(doc, "Welcome to Customer Support. Please say your Beneficiary Number.") {
		t.Errorf("greeting prompt missing: %s", doc)
	}
	if !strings.Contains(doc, "/process_beneficiary") {
		t.Errorf("gather action missing: %s", doc)
	}
	// молчание возвращает звонок на /voice
	if !strings.Contains(doc, "/voice") {
		t.Errorf("redirect missing: %s", doc)
	}
}

func TestVerificationSuccess(t *testing.T) {
	ivr, customers, _, _, sessions := newIVRFixture()
	seedCustomer(t, customers, "12345", "ACC1", "Asha", "+15551230000")

	doc := verifyCall(t, ivr, "CA100", "12345", "ACC1")

	if !strings.Contains(doc, "Thanks Asha") {
		t.Errorf("verified prompt should greet by name: %s", doc)
	}
	if !strings.Contains(doc, "Say one to hear unresolved complaints or two to register a new complaint.") {
		t.Errorf("options prompt missing: %s", doc)
	}
	if !strings.Contains(doc, "/process_option") {
		t.Errorf("gather action missing: %s", doc)
	}

	session, found, err := sessions.Get(context.Background(), "CA100")
	if err != nil || !found {
		t.Fatalf("session missing after verification: found=%v err=%v", found, err)
	}
	if !session.Verified || session.Name != "Asha" || session.Phone != "+15551230000" {
		t.Errorf("session = %+v", session)
	}
}

func TestVerificationFailureIsTerminal(t *testing.T) {
	ivr, customers, _, _, sessions := newIVRFixture()
	seedCustomer(t, customers, "12345", "ACC1", "Asha", "+15551230000")

	doc := verifyCall(t, ivr, "CA200", "12345", "WRONG")

	if !strings.Contains(doc, "Verification failed. Please call again.") {
		t.Errorf("failure prompt missing: %s", doc)
	}
	if !strings.Contains(doc, "Hangup") {
		t.Errorf("call should hang up: %s", doc)
	}

	if _, found, _ := sessions.Get(context.Background(), "CA200"); found {
		t.Error("session should be evicted after failed verification")
	}

	// Терминальное состояние: следующая реплика упирается в отсутствие сессии
	doc, err := ivr.ProcessOption(context.Background(), "CA200", "1")
	if err != nil {
		t.Fatalf("ProcessOption: %v", err)
	}
	if !strings.Contains(doc, "Session not found. Please call again.") {
		t.Errorf("option after failure should not be served: %s", doc)
	}
}

func TestOptionHistory(t *testing.T) {
	ivr, customers, complaints, sender, sessions := newIVRFixture()
	customer := seedCustomer(t, customers, "12345", "ACC1", "Asha", "+15551230000")
	ctx := context.Background()

	for _, issue := range []string{"Power outage", "Billing dispute"} {
		if err := complaints.Insert(ctx, &models.Complaint{
			ComplaintID: "CMP-" + issue[:4],
			CustomerID:  customer.ID,
			IssueType:   issue,
		}); err != nil {
			t.Fatalf("seed complaint: %v", err)
		}
	}

	verifyCall(t, ivr, "CA300", "12345", "ACC1")
	doc, err := ivr.ProcessOption(ctx, "CA300", "1")
	if err != nil {
		t.Fatalf("ProcessOption: %v", err)
	}

	if !strings.Contains(doc, "You have 2 unresolved complaints: Power outage, Billing dispute.") {
		t.Errorf("history text wrong: %s", doc)
	}
	if !strings.Contains(doc, "Thank you for calling. Goodbye.") {
		t.Errorf("goodbye missing: %s", doc)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sms sent = %d, want 1", len(sender.sent))
	}
	if want := "BOT: You have 2 unresolved complaints: Power outage, Billing dispute."; sender.sent[0].body != want {
		t.Errorf("sms = %q, want %q", sender.sent[0].body, want)
	}
	if sender.sent[0].to != "+15551230000" {
		t.Errorf("sms to = %q", sender.sent[0].to)
	}
	if _, found, _ := sessions.Get(ctx, "CA300"); found {
		t.Error("session should be evicted after option stage")
	}
}

func TestOptionHistory_NoOpenComplaints(t *testing.T) {
	ivr, customers, _, sender, _ := newIVRFixture()
	seedCustomer(t, customers, "12345", "ACC1", "Asha", "+15551230000")

	verifyCall(t, ivr, "CA400", "12345", "ACC1")
	doc, err := ivr.ProcessOption(context.Background(), "CA400", "history please")
	if err != nil {
		t.Fatalf("ProcessOption: %v", err)
	}

	if !strings.Contains(doc, "You have no unresolved complaints.") {
		t.Errorf("empty-history text missing: %s", doc)
	}
	if len(sender.sent) != 1 || sender.sent[0].body != "BOT: You have no unresolved complaints." {
		t.Errorf("sms = %+v", sender.sent)
	}
}

func TestOptionNewComplaint(t *testing.T) {
	ivr, customers, _, sender, _ := newIVRFixture()
	seedCustomer(t, customers, "12345", "ACC1", "Asha", "+15551230000")

	verifyCall(t, ivr, "CA500", "12345", "ACC1")
	doc, err := ivr.ProcessOption(context.Background(), "CA500", "two please")
	if err != nil {
		t.Fatalf("ProcessOption: %v", err)
	}

	if !strings.Contains(doc, "To raise a new complaint, please use our website or mobile app.") {
		t.Errorf("redirect text missing: %s", doc)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sms sent = %d, want 1", len(sender.sent))
	}
	if want := "BOT: To raise a new complaint, please use our website or mobile app."; sender.sent[0].body != want {
		t.Errorf("sms = %q, want %q", sender.sent[0].body, want)
	}
}

func TestOptionUnrecognized(t *testing.T) {
	ivr, customers, _, sender, _ := newIVRFixture()
	seedCustomer(t, customers, "12345", "ACC1", "Asha", "+15551230000")

	verifyCall(t, ivr, "CA600", "12345", "ACC1")
	doc, err := ivr.ProcessOption(context.Background(), "CA600", "banana")
	if err != nil {
		t.Fatalf("ProcessOption: %v", err)
	}

	// в XML апостроф сериализуется как &apos;
	if !strings.Contains(doc, "Sorry, I didn&apos;t understand your option.") {
		t.Errorf("unrecognized text missing: %s", doc)
	}
	if !strings.Contains(doc, "Thank you for calling. Goodbye.") {
		t.Errorf("goodbye missing: %s", doc)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sms sent = %d, want 0", len(sender.sent))
	}
}

func TestOptionSMSFailureDoesNotBreakCall(t *testing.T) {
	ivr, customers, _, sender, _ := newIVRFixture()
	seedCustomer(t, customers, "12345", "ACC1", "Asha", "+15551230000")

	verifyCall(t, ivr, "CA700", "12345", "ACC1")
	sender.err = errors.New("twilio unreachable")

	doc, err := ivr.ProcessOption(context.Background(), "CA700", "2")
	if err != nil {
		t.Fatalf("ProcessOption should swallow SMS failure, got %v", err)
	}
	if !strings.Contains(doc, "Thank you for calling. Goodbye.") {
		t.Errorf("goodbye missing: %s", doc)
	}
}

func TestOptionWithoutSession(t *testing.T) {
	ivr, _, _, _, _ := newIVRFixture()

	doc, err := ivr.ProcessOption(context.Background(), "CA-UNKNOWN", "1")
	if err != nil {
		t.Fatalf("ProcessOption: %v", err)
	}
	if !strings.Contains(doc, "Session not found. Please call again.") {
		t.Errorf("guard prompt missing: %s", doc)
	}
	if !strings.Contains(doc, "Hangup") {
		t.Errorf("call should hang up: %s", doc)
	}
}

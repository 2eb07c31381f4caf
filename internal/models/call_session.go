package models

// CallSession хранит ход одного телефонного звонка, ключ — CallSid от Twilio.
type CallSession struct {
	BeneficiaryNo string `json:"beneficiary_no"`
	AccountNumber string `json:"account_number"`
	Verified      bool   `json:"verified"`
	CustomerID    string `json:"customer_id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
}

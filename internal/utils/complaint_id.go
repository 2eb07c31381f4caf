package utils

import "math/rand"

const complaintIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenComplaintID возвращает новый идентификатор жалобы: "CMP-" + 6 символов.
func GenComplaintID() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = complaintIDAlphabet[rand.Intn(len(complaintIDAlphabet))]
	}
	return "CMP-" + string(b)
}

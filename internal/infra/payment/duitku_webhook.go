package payment

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"whatsapp-reseller/internal/domain/model"
)

// CallbackSignature is MD5(merchantCode + amount + merchantOrderId + apiKey),
// hex encoded, as sent by Duitku on the result callback.
func CallbackSignature(merchantCode, amount, merchantOrderID, apiKey string) string {
	sum := md5.Sum([]byte(merchantCode + amount + merchantOrderID + apiKey))
	return hex.EncodeToString(sum[:])
}

// InquirySignature signs an invoice request:
// MD5(merchantCode + merchantOrderId + paymentAmount + apiKey).
func InquirySignature(merchantCode, merchantOrderID, amount, apiKey string) string {
	sum := md5.Sum([]byte(merchantCode + merchantOrderID + amount + apiKey))
	return hex.EncodeToString(sum[:])
}

// VerifyDuitkuCallbackSignature recomputes the callback signature over the
// declared fields and compares it in constant time.
func VerifyDuitkuCallbackSignature(apiKey string, p model.CallbackPayload) bool {
	if p.Signature == "" || p.MerchantOrderID == "" {
		return false
	}
	expected := CallbackSignature(p.MerchantCode, p.Amount, p.MerchantOrderID, apiKey)
	got := strings.ToLower(strings.TrimSpace(p.Signature))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

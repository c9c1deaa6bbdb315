package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"
)

const testBotToken = "123456:TEST-TOKEN"

// signInitData builds a query string signed the way Telegram signs it
func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	hash := hex.EncodeToString(mac.Sum(nil))

	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}
	q.Set("hash", hash)
	return q.Encode()
}

func TestValidateInitData(t *testing.T) {
	fields := map[string]string{
		"auth_date":   fmt.Sprintf("%d", time.Now().Unix()),
		"user":        `{"id":42,"first_name":"Alice","username":"alice","language_code":"en"}`,
		"start_param": "FRIEND01",
	}
	initData := signInitData(t, testBotToken, fields)

	user, err := ValidateInitData(initData, testBotToken)
	if err != nil {
		t.Fatalf("ValidateInitData failed: %v", err)
	}
	if user.ID != 42 {
		t.Errorf("expected user id 42, got %d", user.ID)
	}
	if user.Username != "alice" {
		t.Errorf("expected username alice, got %q", user.Username)
	}
	if user.StartParam != "FRIEND01" {
		t.Errorf("expected start_param FRIEND01, got %q", user.StartParam)
	}
}

func TestValidateInitDataWrongToken(t *testing.T) {
	fields := map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
		"user":      `{"id":42,"first_name":"Alice"}`,
	}
	initData := signInitData(t, "999999:OTHER-TOKEN", fields)

	if _, err := ValidateInitData(initData, testBotToken); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestValidateInitDataTampered(t *testing.T) {
	fields := map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
		"user":      `{"id":42,"first_name":"Alice"}`,
	}
	initData := signInitData(t, testBotToken, fields)
	tampered := strings.Replace(initData, "Alice", "Mallory", 1)

	if _, err := ValidateInitData(tampered, testBotToken); err == nil {
		t.Fatal("expected tampered payload to be rejected")
	}
}

func TestValidateInitDataExpired(t *testing.T) {
	fields := map[string]string{
		"auth_date": fmt.Sprintf("%d", time.Now().Add(-25*time.Hour).Unix()),
		"user":      `{"id":42,"first_name":"Alice"}`,
	}
	initData := signInitData(t, testBotToken, fields)

	if _, err := ValidateInitData(initData, testBotToken); err == nil {
		t.Fatal("expected expired payload to be rejected")
	}
}

func TestValidateInitDataMissingHash(t *testing.T) {
	if _, err := ValidateInitData("auth_date=1", testBotToken); err == nil {
		t.Fatal("expected missing hash to be rejected")
	}
}

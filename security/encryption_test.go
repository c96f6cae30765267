package security

import (
	"testing"
)

func TestNewCipherRejectsEmptyKey(t *testing.T) {
	if _, err := NewCipher(""); err == nil {
		t.Error("Expected an error for an empty key")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewCipher("test-encryption-key")
	if err != nil {
		t.Fatalf("NewCipher failed: %v", err)
	}

	testCases := []struct {
		name  string
		value string
	}{
		{"Email", "ana@example.org"},
		{"Empty string", ""},
		{"Phone with symbols", "+351 (22) 555-0100"},
		{"Unicode", "Rua São João, 12"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encrypted, err := c.Encrypt(tc.value)
			if err != nil {
				t.Fatalf("Error encrypting '%s': %v", tc.value, err)
			}

			if encrypted == tc.value && tc.value != "" {
				t.Errorf("Encrypted value '%s' is the same as the original", encrypted)
			}

			decrypted, err := c.Decrypt(encrypted)
			if err != nil {
				t.Fatalf("Error decrypting: %v", err)
			}

			if decrypted != tc.value {
				t.Errorf("Expected '%s', got '%s'", tc.value, decrypted)
			}
		})
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	c, _ := NewCipher("test-encryption-key")

	a, _ := c.Encrypt("same value")
	b, _ := c.Encrypt("same value")

	if a == b {
		t.Error("Expected different ciphertexts for repeated encryption")
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	c1, _ := NewCipher("key-one")
	c2, _ := NewCipher("key-two")

	encrypted, err := c1.Encrypt("secret contact")
	if err != nil {
		t.Fatalf("Error encrypting: %v", err)
	}

	if _, err := c2.Decrypt(encrypted); err == nil {
		t.Error("Expected an error decrypting with the wrong key")
	}
}

func TestDecryptInvalidInput(t *testing.T) {
	c, _ := NewCipher("test-encryption-key")

	testCases := []struct {
		name  string
		input string
	}{
		{"Not base64", "%%%"},
		{"Too short", "YWJj"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Decrypt(tc.input); err == nil {
				t.Errorf("Expected an error for input %q", tc.input)
			}
		})
	}
}

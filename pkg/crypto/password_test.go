package crypto

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pass1234")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if hash == "pass1234" {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !VerifyPassword(hash, "pass1234") {
		t.Fatal("expected verification to succeed for the right password")
	}
	if VerifyPassword(hash, "wrongpass") {
		t.Fatal("expected verification to fail for the wrong password")
	}
}

package auth

import "testing"

func TestKeyHashRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if len(key) != 43 {
		t.Errorf("key length = %d, want 43", len(key))
	}

	hash, err := HashKey(key)
	if err != nil {
		t.Fatalf("HashKey: %v", err)
	}
	if hash == key {
		t.Error("hash equals plaintext")
	}

	if err := CheckKey(key, hash); err != nil {
		t.Errorf("CheckKey with correct key: %v", err)
	}
	if err := CheckKey("wrong-key", hash); err == nil {
		t.Error("CheckKey accepted a wrong key")
	}
}

func TestGenerateKeyUnique(t *testing.T) {
	a, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	b, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if a == b {
		t.Error("two generated keys are identical")
	}
}

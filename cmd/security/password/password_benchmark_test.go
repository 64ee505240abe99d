package password

import "testing"

func BenchmarkHash_DefaultCost(b *testing.B) {
	h := newDefaultHasher(b)
	pw := "password123"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Hash(pw); err != nil {
			b.Fatalf("Hash error: %v", err)
		}
	}
}

func BenchmarkVerify_DefaultCost(b *testing.B) {
	h := newDefaultHasher(b)
	pw := "password123"
	hashed, err := h.Hash(pw)
	if err != nil {
		b.Fatalf("Hash error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !h.Verify(pw, hashed) {
			b.Fatalf("Verify failed")
		}
	}
}

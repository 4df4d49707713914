package core

import "testing"

func TestCIDFromBytesEmpty(t *testing.T) {
	// SHA256("") — a well-known constant, asserted here to pin the content
	// model's "empty file yields one empty block" behaviour.
	const want = Hex32("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	if got := CIDFromBytes(nil); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
	if got := CIDFromBytes([]byte{}); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestCIDFromBytesHello(t *testing.T) {
	const want = Hex32("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	if got := CIDFromBytes([]byte("hello")); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestVerifyCID(t *testing.T) {
	data := []byte("verify me")
	cid := CIDFromBytes(data)
	if !VerifyCID(cid, data) {
		t.Fatalf("expected VerifyCID to accept matching data")
	}
	if VerifyCID(cid, []byte("tampered")) {
		t.Fatalf("expected VerifyCID to reject tampered data")
	}
}

func TestValidHex32(t *testing.T) {
	if !ValidHex32(CIDFromBytes([]byte("x"))) {
		t.Fatalf("expected a real CID to be valid")
	}
	cases := []Hex32{
		"",
		"not-hex",
		ZeroHash[:63],
		Hex32(string(ZeroHash) + "0"),
		Hex32("ABCDEF0000000000000000000000000000000000000000000000000000000"), // uppercase, too short
	}
	for _, c := range cases {
		if ValidHex32(c) {
			t.Fatalf("expected %q to be invalid", c)
		}
	}
}

func TestCIDFromObjectIsDeterministic(t *testing.T) {
	type sample struct {
		A int    `cbor:"a"`
		B string `cbor:"b"`
	}
	v := sample{A: 1, B: "two"}
	c1, err := CIDFromObject(v)
	if err != nil {
		t.Fatalf("cid: %v", err)
	}
	c2, err := CIDFromObject(v)
	if err != nil {
		t.Fatalf("cid: %v", err)
	}
	if c1 != c2 {
		t.Fatalf("expected deterministic CIDFromObject, got %s vs %s", c1, c2)
	}
}

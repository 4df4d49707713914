package core

import "testing"

func leafCIDs(labels ...string) []Hex32 {
	out := make([]Hex32, len(labels))
	for i, l := range labels {
		out[i] = CIDFromBytes([]byte(l))
	}
	return out
}

func TestMerkleRootSingleLeaf(t *testing.T) {
	leaves := leafCIDs("a")
	root, err := MerkleRoot(leaves)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	if root != leaves[0] {
		t.Fatalf("single-leaf root should equal the leaf itself: got %s want %s", root, leaves[0])
	}
}

func TestMerkleRootOddPromotesRatherThanDuplicates(t *testing.T) {
	// Three leaves: a,b pair and hash; c is promoted unchanged, so the root
	// is hash(hash(a,b), c), NOT hash(hash(a,b), hash(c,c)).
	leaves := leafCIDs("a", "b", "c")
	root, err := MerkleRoot(leaves)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	ab := hashPair(leaves[0].Bytes(), leaves[1].Bytes())
	want := hex32FromBytes(hashPair(ab, leaves[2].Bytes()))
	if root != want {
		t.Fatalf("got %s want %s", root, want)
	}

	dup := hex32FromBytes(hashPair(ab, hashPair(leaves[2].Bytes(), leaves[2].Bytes())))
	if root == dup {
		t.Fatalf("root must not equal the duplicate-last-leaf construction")
	}
}

func TestMerkleRootEmptyIsError(t *testing.T) {
	if _, err := MerkleRoot(nil); err == nil {
		t.Fatalf("expected error for empty leaf set")
	}
}

func TestMerkleProofRoundTripEven(t *testing.T) {
	leaves := leafCIDs("a", "b", "c", "d")
	root, err := MerkleRoot(leaves)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	for i := range leaves {
		proof, proofRoot, err := MerkleProof(leaves, i)
		if err != nil {
			t.Fatalf("proof %d: %v", i, err)
		}
		if proofRoot != root {
			t.Fatalf("proof root mismatch at %d: got %s want %s", i, proofRoot, root)
		}
		ok, err := VerifyMerklePath(root, leaves[i], proof)
		if err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("proof for leaf %d did not verify", i)
		}
	}
}

func TestMerkleProofRoundTripOdd(t *testing.T) {
	leaves := leafCIDs("a", "b", "c", "d", "e")
	root, err := MerkleRoot(leaves)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	for i := range leaves {
		proof, _, err := MerkleProof(leaves, i)
		if err != nil {
			t.Fatalf("proof %d: %v", i, err)
		}
		ok, err := VerifyMerklePath(root, leaves[i], proof)
		if err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("proof for leaf %d did not verify", i)
		}
	}
}

func TestMerkleProofRejectsWrongLeaf(t *testing.T) {
	leaves := leafCIDs("a", "b", "c", "d", "e")
	root, err := MerkleRoot(leaves)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	proof, _, err := MerkleProof(leaves, 0)
	if err != nil {
		t.Fatalf("proof: %v", err)
	}
	ok, err := VerifyMerklePath(root, leaves[1], proof)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("expected proof built for leaf 0 to fail against leaf 1")
	}
}

func TestMerkleProofIndexOutOfRange(t *testing.T) {
	leaves := leafCIDs("a", "b")
	if _, _, err := MerkleProof(leaves, -1); err == nil {
		t.Fatalf("expected error for negative index")
	}
	if _, _, err := MerkleProof(leaves, 2); err == nil {
		t.Fatalf("expected error for index == len(leaves)")
	}
}

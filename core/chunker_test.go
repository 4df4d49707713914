package core

import (
	"bytes"
	"testing"
)

func TestChunkEmptyFileYieldsOneEmptyBlock(t *testing.T) {
	res, err := Chunk(nil, "text/plain", 0)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("expected 1 block for empty input, got %d", len(res.Blocks))
	}
	if len(res.Blocks[0].Data) != 0 {
		t.Fatalf("expected empty block data")
	}
	if res.Manifest.Size != 0 {
		t.Fatalf("expected manifest size 0, got %d", res.Manifest.Size)
	}
}

func TestChunkSplitsIntoFixedSizeBlocks(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 100)
	res, err := Chunk(data, "application/octet-stream", 30)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	// 100 bytes at 30-byte chunks: 30,30,30,10 -> 4 blocks.
	if len(res.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(res.Blocks))
	}
	if len(res.Blocks[3].Data) != 10 {
		t.Fatalf("expected last block to be 10 bytes, got %d", len(res.Blocks[3].Data))
	}
	if res.Manifest.Size != int64(len(data)) {
		t.Fatalf("manifest size mismatch: got %d want %d", res.Manifest.Size, len(data))
	}
	for i, b := range res.Blocks {
		if !VerifyCID(b.CID, b.Data) {
			t.Fatalf("block %d CID does not match its data", i)
		}
	}
}

func TestChunkDefaultSize(t *testing.T) {
	data := make([]byte, ChunkSizeDefault+1)
	res, err := Chunk(data, "", 0)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("expected 2 blocks for size just over default chunk size, got %d", len(res.Blocks))
	}
}

func TestChunkRejectsTooManyBlocks(t *testing.T) {
	data := make([]byte, (MaxManifestBlocks+1)*1)
	_, err := Chunk(data, "", 1)
	if err == nil {
		t.Fatalf("expected error for block count exceeding MaxManifestBlocks")
	}
	if !HasTag(err, TagInvalidField) {
		t.Fatalf("expected invalid_field tag, got %v", err)
	}
}

func TestReassembleRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 50) // 400 bytes
	res, err := Chunk(data, "text/plain", 64)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	blockMap := make(map[Hex32][]byte, len(res.Blocks))
	for _, b := range res.Blocks {
		blockMap[b.CID] = b.Data
	}
	out, err := Reassemble(res.Manifest, blockMap)
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("reassembled data does not match original")
	}
}

func TestReassembleMissingBlock(t *testing.T) {
	data := bytes.Repeat([]byte{1}, 200)
	res, err := Chunk(data, "", 64)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	blockMap := make(map[Hex32][]byte)
	for i, b := range res.Blocks {
		if i == 0 {
			continue
		}
		blockMap[b.CID] = b.Data
	}
	_, err = Reassemble(res.Manifest, blockMap)
	if !HasTag(err, TagMissingBlock) {
		t.Fatalf("expected missing_block, got %v", err)
	}
}

func TestReassembleCIDMismatch(t *testing.T) {
	data := bytes.Repeat([]byte{2}, 200)
	res, err := Chunk(data, "", 64)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	blockMap := make(map[Hex32][]byte)
	for _, b := range res.Blocks {
		blockMap[b.CID] = b.Data
	}
	first := res.Manifest.Blocks[0]
	blockMap[first] = []byte("tampered data that does not hash to the claimed cid")
	_, err = Reassemble(res.Manifest, blockMap)
	if !HasTag(err, TagCIDMismatch) {
		t.Fatalf("expected cid_mismatch, got %v", err)
	}
}

func TestReassembleSizeMismatch(t *testing.T) {
	manifest := FileManifest{
		Version: 1, ChunkSize: 64, Size: 999,
		Blocks: []Hex32{CIDFromBytes([]byte("x"))},
	}
	blockMap := map[Hex32][]byte{manifest.Blocks[0]: []byte("x")}
	_, err := Reassemble(manifest, blockMap)
	if !HasTag(err, TagSizeMismatch) {
		t.Fatalf("expected size_mismatch, got %v", err)
	}
}

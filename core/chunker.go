package core

// Block is a raw byte sequence paired with its content ID.
type Block struct {
	CID  Hex32
	Data []byte
}

// ChunkResult is the output of Chunk: the ordered blocks, the manifest
// describing them, and the manifest's own content ID (file_root).
type ChunkResult struct {
	Blocks   []Block
	Manifest FileManifest
	FileRoot Hex32
}

// Chunk splits data into fixed-size blocks. chunkSize <= 0 uses
// ChunkSizeDefault. An empty file yields a single empty block rather than
// zero blocks, so every file has at least one addressable block and a
// well-defined Merkle root.
func Chunk(data []byte, mime string, chunkSize int) (*ChunkResult, error) {
	if chunkSize <= 0 {
		chunkSize = ChunkSizeDefault
	}

	var blocks []Block
	if len(data) == 0 {
		cid := CIDFromBytes(nil)
		blocks = []Block{{CID: cid, Data: []byte{}}}
	} else {
		for off := 0; off < len(data); off += chunkSize {
			end := off + chunkSize
			if end > len(data) {
				end = len(data)
			}
			chunk := data[off:end]
			blocks = append(blocks, Block{CID: CIDFromBytes(chunk), Data: chunk})
		}
	}

	if len(blocks) > MaxManifestBlocks {
		return nil, NewError(TagInvalidField, "chunker: %d blocks exceeds MAX_MANIFEST_BLOCKS", len(blocks))
	}

	blockCIDs := make([]Hex32, len(blocks))
	for i, b := range blocks {
		blockCIDs[i] = b.CID
	}
	root, err := MerkleRoot(blockCIDs)
	if err != nil {
		return nil, err
	}

	manifest := FileManifest{
		Version: 1, ChunkSize: chunkSize, Size: int64(len(data)),
		Blocks: blockCIDs, MerkleRoot: root, Mime: mime,
	}
	fileRoot, err := CIDFromObject(manifest)
	if err != nil {
		return nil, err
	}

	return &ChunkResult{Blocks: blocks, Manifest: manifest, FileRoot: fileRoot}, nil
}

// Reassemble verifies every expected block CID against candidate bytes
// supplied in blockMap and reconstructs the original file.
func Reassemble(manifest FileManifest, blockMap map[Hex32][]byte) ([]byte, error) {
	out := make([]byte, 0, manifest.Size)
	for _, cid := range manifest.Blocks {
		data, ok := blockMap[cid]
		if !ok {
			return nil, NewError(TagMissingBlock, "reassemble: missing block %s", cid)
		}
		if !VerifyCID(cid, data) {
			return nil, NewError(TagCIDMismatch, "reassemble: block %s does not hash to its claimed CID", cid)
		}
		out = append(out, data...)
	}
	if int64(len(out)) != manifest.Size {
		return nil, NewError(TagSizeMismatch, "reassemble: reconstructed %d bytes, manifest claims %d", len(out), manifest.Size)
	}
	return out, nil
}

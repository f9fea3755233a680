package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"
)

// GenesisPreviousHash is the sentinel previous-hash of the first block.
const GenesisPreviousHash = "0"

// GenesisData is the fixed payload of the genesis block.
const GenesisData = "Genesis Block"

/**
 * Block represents a single immutable record in the ledger.
 * It contains metadata such as index, timestamp, and hash information,
 * along with an arbitrary JSON-serializable payload.
 */
type Block struct {
	Index        uint64      `json:"index"`        // Position of the block in the chain
	PreviousHash string      `json:"previousHash"` // Hash of the previous block in the chain
	Timestamp    int64       `json:"timestamp"`    // Creation time in epoch milliseconds
	Data         interface{} `json:"data"`         // Arbitrary payload, serialized as JSON when hashing
	Hash         string      `json:"hash"`         // Current block's hash
}

/**
 * BlockData is the payload shape of every appended (non-genesis) block.
 * Field order is part of the hash contract: the JSON serialization must
 * emit "data" before "creator" so independently computed hashes over the
 * same logical payload match.
 */
type BlockData struct {
	Data    interface{} `json:"data"`    // Caller-supplied payload
	Creator string      `json:"creator"` // Identity of the appending session
}

/**
 * CalculateHash computes the SHA-256 digest of a block's content.
 * The input is the concatenation of index, previous hash, timestamp and
 * the JSON serialization of the payload, with no delimiter. Index and
 * timestamp are rendered in base 10. The result is lowercase hex.
 *
 * The function is pure: the same tuple always yields the same digest.
 */
func CalculateHash(index uint64, previousHash string, timestamp int64, data interface{}) string {
	dataJSON, _ := json.Marshal(data)

	record := strconv.FormatUint(index, 10) + previousHash + strconv.FormatInt(timestamp, 10) + string(dataJSON)

	sum := sha256.Sum256([]byte(record))
	return hex.EncodeToString(sum[:])
}

/**
 * NewBlock builds a block and computes its hash at construction time.
 * The block is never mutated afterwards and its hash is never recomputed.
 *
 * Parameters:
 *   - index: Position of the block in the ledger
 *   - previousHash: Hash of the block at index-1
 *   - timestamp: Creation time in epoch milliseconds
 *   - data: Payload of the block
 *
 * Returns:
 *   - A pointer to the newly created block
 */
func NewBlock(index uint64, previousHash string, timestamp int64, data interface{}) *Block {
	return &Block{
		Index:        index,
		PreviousHash: previousHash,
		Timestamp:    timestamp,
		Data:         data,
		Hash:         CalculateHash(index, previousHash, timestamp, data),
	}
}

// NewGenesisBlock builds the fixed first block of a ledger. The timestamp
// is taken at process start, so genesis hashes differ across restarts.
func NewGenesisBlock() *Block {
	return NewBlock(0, GenesisPreviousHash, time.Now().UnixMilli(), GenesisData)
}

// CalculateHash recomputes the digest of the block's own content.
// Used for validation only; the stored Hash field is authoritative.
func (b *Block) CalculateHash() string {
	return CalculateHash(b.Index, b.PreviousHash, b.Timestamp, b.Data)
}

// Creator returns the identity recorded in the block's payload. It handles
// both in-process blocks (BlockData) and blocks decoded from JSON, where the
// payload arrives as a generic map. Genesis has no creator.
func (b *Block) Creator() string {
	switch data := b.Data.(type) {
	case BlockData:
		return data.Creator
	case map[string]interface{}:
		if creator, ok := data["creator"].(string); ok {
			return creator
		}
	}
	return ""
}

// Payload returns the caller-supplied portion of the block's data
func (b *Block) Payload() interface{} {
	switch data := b.Data.(type) {
	case BlockData:
		return data.Data
	case map[string]interface{}:
		if payload, ok := data["data"]; ok {
			return payload
		}
	}
	return b.Data
}

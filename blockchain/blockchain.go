package blockchain

import (
	"sync"
	"time"
)

/**
 * Blockchain is the shared, append-only ledger.
 * It starts with a genesis block, is only ever mutated by appending to the
 * tail, and is protected by a mutex so appends are linearizable across
 * concurrently handled connections.
 */
type Blockchain struct {
	blocks []*Block     // Ordered list of blocks in the chain
	mutex  sync.RWMutex // Mutex to ensure thread-safe access to the blockchain
}

/**
 * NewBlockchain initializes a new ledger containing only the genesis block.
 *
 * Returns:
 *   - A pointer to the newly created blockchain
 */
func NewBlockchain() *Blockchain {
	blockchain := &Blockchain{
		blocks: make([]*Block, 0),
	}

	blockchain.blocks = append(blockchain.blocks, NewGenesisBlock())
	return blockchain
}

/**
 * Append builds a new block from the current tail and adds it to the chain.
 * This is the sole mutator of the ledger. The tail read, block construction
 * and append happen under one lock, so two concurrent appends can never
 * compute conflicting index/previousHash pairs from a stale tail.
 *
 * Parameters:
 *   - payload: Caller-supplied payload for the block
 *   - creator: Identity of the session appending the block
 *
 * Returns:
 *   - *Block: The newly appended block
 */
func (bc *Blockchain) Append(payload interface{}, creator string) *Block {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	lastBlock := bc.blocks[len(bc.blocks)-1]
	newBlock := NewBlock(lastBlock.Index+1, lastBlock.Hash, time.Now().UnixMilli(), BlockData{
		Data:    payload,
		Creator: creator,
	})

	bc.blocks = append(bc.blocks, newBlock)
	return newBlock
}

/**
 * GetLastBlock returns the most recent block in the blockchain.
 *
 * Returns:
 *   - *Block: The latest block
 */
func (bc *Blockchain) GetLastBlock() *Block {
	bc.mutex.RLock()
	defer bc.mutex.RUnlock()
	return bc.blocks[len(bc.blocks)-1]
}

/**
 * GetLength returns the number of blocks in the blockchain.
 *
 * Returns:
 *   - int: Length of the blockchain
 */
func (bc *Blockchain) GetLength() int {
	bc.mutex.RLock()
	defer bc.mutex.RUnlock()
	return len(bc.blocks)
}

/**
 * GetBlocks returns a snapshot of all blocks in order.
 * The slice is a copy; the blocks themselves are immutable.
 *
 * Returns:
 *   - []*Block: All blocks in order
 */
func (bc *Blockchain) GetBlocks() []*Block {
	bc.mutex.RLock()
	defer bc.mutex.RUnlock()

	snapshot := make([]*Block, len(bc.blocks))
	copy(snapshot, bc.blocks)
	return snapshot
}

/**
 * IsValid checks the integrity of the whole chain: the genesis sentinel,
 * index continuity, previous-hash linkage and hash integrity of every block.
 *
 * Returns:
 *   - bool: True if the chain is valid, false otherwise
 */
func (bc *Blockchain) IsValid() bool {
	return IsValidChain(bc.GetBlocks())
}

/**
 * IsValidChain validates an ordered slice of blocks starting from genesis.
 *
 * Parameters:
 *   - chain: Slice of blocks to validate
 *
 * Returns:
 *   - bool: True if the chain is valid, false otherwise
 */
func IsValidChain(chain []*Block) bool {
	if len(chain) == 0 {
		return false
	}

	// Genesis block must carry the sentinel previous hash
	if chain[0].Index != 0 || chain[0].PreviousHash != GenesisPreviousHash {
		return false
	}
	if chain[0].Hash != chain[0].CalculateHash() {
		return false
	}

	// Validate each block against its predecessor
	for i := 1; i < len(chain); i++ {
		if !isBlockConsistentWithPrevious(chain[i], chain[i-1]) {
			return false
		}
	}

	return true
}

/**
 * isBlockConsistentWithPrevious ensures a block is consistent with its predecessor.
 *
 * Parameters:
 *   - block: The current block being checked
 *   - previousBlock: The block immediately before the current one
 *
 * Returns:
 *   - bool: True if the block is consistent, false otherwise
 */
func isBlockConsistentWithPrevious(block *Block, previousBlock *Block) bool {
	// Index should be exactly one greater
	if block.Index != previousBlock.Index+1 {
		return false
	}

	// Previous hash must match the predecessor's hash
	if block.PreviousHash != previousBlock.Hash {
		return false
	}

	// Block hash must match its calculated value
	if block.Hash != block.CalculateHash() {
		return false
	}

	return true
}

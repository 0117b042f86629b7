// Package changedetect provides the content-hash gate that lets the scan
// orchestrator skip re-extraction and re-scoring of unchanged files.
//
// The hash is a fast non-cryptographic digest used purely for equality
// checking between scans. No integrity or security property is implied.
package changedetect

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hash returns the content digest for raw file text
func Hash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// Changed reports whether newly observed content differs from the previously
// stored digest. A file never seen before (empty previous hash) always
// counts as changed.
func Changed(previousHash, content string) bool {
	if previousHash == "" {
		return true
	}
	return Hash(content) != previousHash
}

package db

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// RunKey fingerprints one planner invocation: the command name, the crop
// definitions and the options. Equal inputs always give the same key since
// encoding/json writes map keys in sorted order.
func RunKey(command string, defs, opts any) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("creating hash: %w", err)
	}
	h.Write([]byte(command))
	h.Write([]byte{0})

	enc := json.NewEncoder(h)
	if err := enc.Encode(defs); err != nil {
		return "", fmt.Errorf("encoding defs: %w", err)
	}
	if err := enc.Encode(opts); err != nil {
		return "", fmt.Errorf("encoding options: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

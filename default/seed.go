// Package defaults provides the embedded seed dictionary the baseline
// engine builds its trie from at startup.
package defaults

import (
	_ "embed"
	"encoding/json"
)

//go:embed seed_words.json
var seedWordsJSON []byte

// SeedWords returns the built-in word-frequency seed dictionary, decoded
// fresh on every call so callers may freely mutate the result.
func SeedWords() map[string]uint32 {
	var words map[string]uint32
	if err := json.Unmarshal(seedWordsJSON, &words); err != nil {
		panic("shurufa: invalid embedded seed_words.json: " + err.Error())
	}
	return words
}

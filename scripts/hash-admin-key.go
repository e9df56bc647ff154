// Command hash-admin-key generates the ADMIN_KEY_HASH value for the
// DELETE endpoint guard. With no -key flag it also generates a random key.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/faceforge/faceforge/internal/auth"
)

type output struct {
	Key  string `json:"key"`
	Hash string `json:"hash"`
}

func main() {
	var (
		key    = flag.String("key", "", "Admin key to hash (random when empty)")
		format = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	adminKey := *key
	if adminKey == "" {
		generated, err := randomKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate key:", err)
			os.Exit(1)
		}
		adminKey = generated
	}

	hash, err := auth.HashKey(adminKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash key:", err)
		os.Exit(1)
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(output{Key: adminKey, Hash: hash}); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Admin key: ", adminKey)
	fmt.Println("ADMIN_KEY_HASH=" + hash)
	fmt.Println()
	fmt.Println("Store the key securely. Only the hash goes into the environment.")
}

func randomKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

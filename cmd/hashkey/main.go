package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sanctuary/auth"
)

// hashkey prints an ADMIN_KEY_HASH value. The admin key is read from the first
// argument, or from stdin, or generated when stdin is empty.
func main() {
	key, generated, err := readKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading admin key: %v\n", err)
		os.Exit(1)
	}
	hash, err := auth.HashSecret(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing admin key: %v\n", err)
		os.Exit(1)
	}
	if generated {
		fmt.Printf("ADMIN_KEY=%s\n", key)
	}
	fmt.Printf("ADMIN_KEY_HASH=%s\n", hash)
}

func readKey() (string, bool, error) {
	if len(os.Args) > 1 {
		return os.Args[1], false, nil
	}
	if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if key := strings.TrimSpace(line); key != "" {
			return key, false, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", false, err
		}
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", false, err
	}
	return hex.EncodeToString(raw), true, nil
}

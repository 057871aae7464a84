// The pinhash command hashes a PIN for manual credential entry, matching the
// format the gateway stores and verifies.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"pinauth/internal/credential"
)

func main() {
	pin := flag.String("pin", "", "plain PIN to hash (required)")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	asJSON := flag.Bool("json", false, "emit JSON instead of the bare hash")
	flag.Parse()

	if *pin == "" {
		fmt.Fprintln(os.Stderr, "usage: pinhash -pin <pin> [-cost N] [-json]")
		os.Exit(2)
	}
	if *cost < bcrypt.MinCost || *cost > bcrypt.MaxCost {
		fmt.Fprintf(os.Stderr, "cost must be between %d and %d\n", bcrypt.MinCost, bcrypt.MaxCost)
		os.Exit(2)
	}

	hashed, err := credential.NewHasher(*cost).Hash(*pin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash pin: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		out, _ := json.Marshal(map[string]any{"hashed_pin": hashed, "cost": *cost})
		fmt.Println(string(out))
		return
	}
	fmt.Println(hashed)
}

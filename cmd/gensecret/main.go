// Prints random hex secrets, one per line, suitable for
// ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const secretKeyBytesLen = 32

func main() {
	for _, name := range []string{"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET"} {
		b := make([]byte, secretKeyBytesLen)

		if _, err := rand.Read(b); err != nil {
			fmt.Printf("error while generating secret key: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s=%s\n", name, hex.EncodeToString(b))
	}
}

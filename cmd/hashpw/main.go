// hashpw prints the argon2id encoding of a password, ready to paste into a
// users row or seed file.
package main

import (
	"flag"
	"fmt"
	"log"

	"fieldtrack.org/internal/auth"
)

func main() {
	log.SetFlags(0)
	password := flag.String("password", "", "password to hash")
	flag.Parse()

	if *password == "" {
		log.Fatal("usage: hashpw -password <secret>")
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}

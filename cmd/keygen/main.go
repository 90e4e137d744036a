package main

import (
	"encoding/base64"
	"fmt"

	"aidanwoods.dev/go-paseto"
)

// keygen prints a fresh PASETO v4 key pair in the base64 form the server
// expects in PASETO_PRIVATE_KEY and PASETO_PUBLIC_KEY.
func main() {
	secretKey := paseto.NewV4AsymmetricSecretKey()
	publicKey := secretKey.Public()

	privateKeyBase64 := base64.StdEncoding.EncodeToString(secretKey.ExportBytes())
	publicKeyBase64 := base64.StdEncoding.EncodeToString(publicKey.ExportBytes())

	fmt.Println("Generated PASETO v4 key pair")
	fmt.Println()
	fmt.Println("Private Key (keep this secret!):")
	fmt.Println(privateKeyBase64)
	fmt.Println()
	fmt.Println("Public Key:")
	fmt.Println(publicKeyBase64)
}

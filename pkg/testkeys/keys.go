// Package testkeys provides PASETO keys for use in tests.
// These keys must NEVER be used in production.
package testkeys

import (
	"encoding/base64"
	"fmt"
)

// Hardcoded keys for testing - DO NOT USE IN PRODUCTION
const (
	HardcodedPrivateKeyB64 = "UayDa4OMDpm3CvIT+iSC39iDyPlsui0pNQYDEZ1pbo1LsIrO4p/aVuCBWz6LiYvzj9pc+gn0gLwRd0CoHV+nxw=="
	HardcodedPublicKeyB64  = "S7CKzuKf2lbggVs+i4mL84/aXPoJ9IC8EXdAqB1fp8c="
)

// GetTestKeys returns hardcoded PASETO keys for testing purposes (base64 encoded).
func GetTestKeys() (string, string) {
	return HardcodedPrivateKeyB64, HardcodedPublicKeyB64
}

// GetTestKeysBytes returns hardcoded PASETO keys as byte slices for testing.
func GetTestKeysBytes() ([]byte, []byte, error) {
	privateKeyBytes, err := base64.StdEncoding.DecodeString(HardcodedPrivateKeyB64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	publicKeyBytes, err := base64.StdEncoding.DecodeString(HardcodedPublicKeyB64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	return privateKeyBytes, publicKeyBytes, nil
}

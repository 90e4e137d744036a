// Package repository maps domain entities onto the flat blob store. Every
// repository is a thin JSON codec over one or two hierarchical keys; the
// store's per-key atomicity is the only consistency guarantee.
package repository

import "fmt"

func accountKey(email string) string {
	return fmt.Sprintf("users/%s.json", email)
}

func farmKey(id string) string {
	return fmt.Sprintf("farms/%s.json", id)
}

const farmIndexKey = "farms/index.json"

func farmDataKey(farmID, key string) string {
	return fmt.Sprintf("farmData/%s/%s.json", farmID, key)
}

func userDataKey(email, key string) string {
	return fmt.Sprintf("userData/%s/%s.json", email, key)
}

func profileKey(email string) string {
	return fmt.Sprintf("profiles/%s.json", email)
}

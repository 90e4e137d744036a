package domain

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"
)

//go:generate mockgen -destination mocks/mock_farm_data_repository.go -package mocks github.com/cluckhub/cluckhub/internal/domain FarmDataRepository
//go:generate mockgen -destination mocks/mock_user_data_repository.go -package mocks github.com/cluckhub/cluckhub/internal/domain UserDataRepository

// SliceShape is the lightweight structural requirement enforced on writes.
type SliceShape string

const (
	ShapeArray  SliceShape = "array"
	ShapeObject SliceShape = "object"
)

// SliceDefinition describes one allow-listed logical data key: who may write
// it and what top-level JSON shape it must have. Adding a new farm data
// category is a new table entry, not new branching logic.
type SliceDefinition struct {
	Key            string
	Shape          SliceShape
	WorkerWritable bool
}

// sliceRegistry is the allow-list of farm data keys. Workers may only write
// the day-to-day input slices; owners and managers may write everything;
// viewers may write nothing.
var sliceRegistry = map[string]SliceDefinition{
	"dailyLog":    {Key: "dailyLog", Shape: ShapeArray, WorkerWritable: true},
	"waterLogs":   {Key: "waterLogs", Shape: ShapeArray, WorkerWritable: true},
	"deliveries":  {Key: "deliveries", Shape: ShapeArray, WorkerWritable: true},
	"weights":     {Key: "weights", Shape: ShapeArray, WorkerWritable: true},
	"feed":        {Key: "feed", Shape: ShapeArray, WorkerWritable: true},
	"sheds":       {Key: "sheds", Shape: ShapeArray, WorkerWritable: false},
	"allocations": {Key: "allocations", Shape: ShapeArray, WorkerWritable: false},
	"reminders":   {Key: "reminders", Shape: ShapeArray, WorkerWritable: false},
	"settings":    {Key: "settings", Shape: ShapeObject, WorkerWritable: false},
}

// SliceDefinitionFor resolves a logical key against the allow-list.
func SliceDefinitionFor(key string) (SliceDefinition, bool) {
	def, ok := sliceRegistry[key]
	return def, ok
}

// SliceKeys returns all allow-listed logical keys.
func SliceKeys() []string {
	keys := make([]string, 0, len(sliceRegistry))
	for key := range sliceRegistry {
		keys = append(keys, key)
	}
	return keys
}

// CanWrite reports whether the role may overwrite this slice.
func (d SliceDefinition) CanWrite(role Role) bool {
	switch role {
	case RoleOwner, RoleManager:
		return true
	case RoleWorker:
		return d.WorkerWritable
	default:
		return false
	}
}

// ValidateShape enforces the slice's top-level JSON shape on a raw payload.
func (d SliceDefinition) ValidateShape(value json.RawMessage) error {
	if !gjson.ValidBytes(value) {
		return NewValidationError("request body must be valid JSON")
	}
	parsed := gjson.ParseBytes(value)
	switch d.Shape {
	case ShapeObject:
		if !parsed.IsObject() {
			return NewValidationError(d.Key + " must be a JSON object")
		}
	case ShapeArray:
		if !parsed.IsArray() {
			return NewValidationError(d.Key + " must be a JSON array")
		}
	}
	return nil
}

// FarmDataRepository stores one JSON document per (farmID, logical key).
type FarmDataRepository interface {
	// GetFarmData returns the stored document, or nil when never written.
	GetFarmData(ctx context.Context, farmID, key string) (json.RawMessage, error)

	// SetFarmData overwrites the stored document wholesale.
	SetFarmData(ctx context.Context, farmID, key string, value json.RawMessage) error
}

// UserDataRepository stores one JSON document per (email, key). The key space
// is caller-defined: account-scoped preference slices not tied to a farm.
type UserDataRepository interface {
	GetUserData(ctx context.Context, email, key string) (json.RawMessage, error)
	SetUserData(ctx context.Context, email, key string, value json.RawMessage) error
}

// FarmDataServiceInterface is the farm-scoped data gateway.
type FarmDataServiceInterface interface {
	// Read returns the slice document, or nil when never written. The caller
	// must be a member of the farm.
	Read(ctx context.Context, email, farmID, key string) (json.RawMessage, error)

	// Write overwrites the slice document after the role and shape gates.
	Write(ctx context.Context, email, farmID, key string, value json.RawMessage) error
}

// UserDataServiceInterface is the user-scoped data gateway: same shape as the
// farm gateway but namespaced by the caller itself, so no role distinctions.
type UserDataServiceInterface interface {
	Read(ctx context.Context, email, key string) (json.RawMessage, error)
	Write(ctx context.Context, email, key string, value json.RawMessage) error
}

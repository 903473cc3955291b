// Package uuid provides helper functions for generating UUIDs.
package uuid

import (
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// Generate is used to generate a random UUID.
func Generate() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		panic(fmt.Errorf("failed to generate uuid: %v", err))
	}
	return id
}

// Short is used to generate the first 8 characters of a UUID.
func Short() string {
	return Generate()[0:8]
}

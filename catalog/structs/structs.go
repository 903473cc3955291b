// Package structs holds the domain types of the catalog: providers, regions,
// projects, services and the service children (quotas, flavors, images,
// networks), plus the create and update payloads consumed by the CRUD
// managers.
//
// Entities are referenced by UUID. Relationships are kept on the child side:
// a Quota carries the UUIDs of its owning service and project, a Flavor
// carries the UUID sets of the services and projects it is available to, and
// so on. The state store indexes these fields so parents can enumerate their
// children.
package structs

import (
	"errors"
	"fmt"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
)

var (
	// ErrNotFound is returned by the CRUD managers when the addressed entity
	// does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateEndpoint is returned when creating or updating a service or
	// identity provider whose endpoint is already registered to another
	// entity of the same kind.
	ErrDuplicateEndpoint = errors.New("endpoint already registered")

	// ErrUnknownProject is returned when a relationship update references a
	// project UUID that is not part of the owning provider's project pool.
	ErrUnknownProject = errors.New("project not found in provider project pool")

	// ErrValidation wraps the field errors reported by an entity's Validate
	// method so callers can map them to a client error.
	ErrValidation = errors.New("validation failed")
)

// validationError wraps the aggregated field errors in ErrValidation, or
// returns nil when there are none.
func validationError(mErr *multierror.Error) error {
	if err := mErr.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// QueryOptions capture the list-endpoint query parameters shared by every
// entity collection.
type QueryOptions struct {
	// Limit caps the number of returned entities. Zero means no limit.
	Limit int

	// Skip drops the first N entities after sorting.
	Skip int

	// Sort names the field to order by. A leading '-' or a trailing '_desc'
	// selects descending order; a trailing '_asc' is accepted and ignored.
	Sort string
}

// SortField returns the normalized sort field name and whether the order is
// descending.
func (q QueryOptions) SortField() (string, bool) {
	field := q.Sort
	descending := false
	if strings.HasPrefix(field, "-") {
		field = strings.TrimPrefix(field, "-")
		descending = true
	}
	if strings.HasSuffix(field, "_desc") {
		field = strings.TrimSuffix(field, "_desc")
		descending = true
	} else {
		field = strings.TrimSuffix(field, "_asc")
	}
	return field, descending
}

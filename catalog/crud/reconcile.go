package crud

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/hashicorp/go-set/v3"
)

// childOps is the capability descriptor a child collection hands to
// reconcileChildren: how to key specs and persisted entities, and how to
// create, update and remove a single child. One generic reconciler
// instantiated per child kind replaces N copies of the same diff loop.
//
// create and update report whether they effectively changed anything; remove
// reports whether the orphan was deleted or merely disconnected (both count
// as a change).
type childOps[S any, E any] struct {
	specKey   func(S) string
	entityKey func(E) string
	create    func(S) (bool, error)
	update    func(E, S) (bool, error)
	remove    func(E) (bool, error)
}

// reconcileChildren diffs the submitted desired-state list against the
// currently persisted child set and applies the minimal create/update/delete
// operations to converge. Desired entries are processed in submission order;
// entities whose key never appears in the desired list are removed. The
// returned flag reports whether any effective change occurred.
func reconcileChildren[S any, E any](desired []S, existing []E, ops childOps[S, E]) (bool, error) {
	byKey := make(map[string]E, len(existing))
	for _, e := range existing {
		byKey[ops.entityKey(e)] = e
	}

	edit := false
	for _, spec := range desired {
		key := ops.specKey(spec)
		e, ok := byKey[key]
		if !ok {
			created, err := ops.create(spec)
			if err != nil {
				return false, err
			}
			edit = edit || created
			continue
		}
		delete(byKey, key)

		changed, err := ops.update(e, spec)
		if err != nil {
			return false, err
		}
		edit = edit || changed
	}

	// Whatever is left was not resubmitted and is orphaned.
	for _, e := range byKey {
		removed, err := ops.remove(e)
		if err != nil {
			return false, err
		}
		edit = edit || removed
	}

	return edit, nil
}

// projectByUUID resolves a project reference against a provider's project
// pool, returning nil when the UUID is not in the pool.
func projectByUUID(pool []*structs.Project, uuid string) *structs.Project {
	for _, p := range pool {
		if p.UUID == uuid {
			return p
		}
	}
	return nil
}

// filterProjects keeps the pool entries whose UUIDs appear in the submitted
// reference list, preserving pool order. Unknown references are dropped.
func filterProjects(pool []*structs.Project, refs []string) []*structs.Project {
	want := set.From(refs)
	var out []*structs.Project
	for _, p := range pool {
		if want.Contains(p.UUID) {
			out = append(out, p)
		}
	}
	return out
}

// quotaKey is the reconciliation key of a quota within its service: the
// (per_user, project) pair. Keeping the flag in the key is equivalent to
// partitioning the persisted quotas into a per-user map and a total map.
func quotaKey(perUser bool, projectID string) string {
	return fmt.Sprintf("%t/%s", perUser, projectID)
}

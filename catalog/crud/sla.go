package crud

import (
	"fmt"
	"time"

	"github.com/fedcloud/catalogd/catalog/state"
	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/fedcloud/catalogd/helper/uuid"
	"github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
)

// SLAManager mutates SLAs. An SLA links exactly one user group to exactly one
// project; a project carries at most one SLA at a time.
type SLAManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create registers an SLA granting a user group access to a project. When the
// project already carries an SLA, the previous agreement is revoked and
// replaced by the new one.
func (m *SLAManager) Create(groupID string, spec *structs.SLASpec) (*structs.SLA, error) {
	defer metrics.MeasureSince([]string{"catalogd", "sla", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	g, err := txn.UserGroupByUUID(groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("user group %q: %w", groupID, structs.ErrNotFound)
	}

	s, err := m.createTxn(txn, spec, g)
	if err != nil {
		return nil, err
	}

	txn.Commit()
	return s, nil
}

// createTxn builds and stores an SLA inside the caller's transaction,
// revoking the project's previous agreement if one exists.
func (m *SLAManager) createTxn(txn *state.Txn, spec *structs.SLASpec, g *structs.UserGroup) (*structs.SLA, error) {
	project, err := txn.ProjectByUUID(spec.Project)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %q: %w", spec.Project, structs.ErrUnknownProject)
	}

	prev, err := txn.SLAByProject(project.UUID)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		m.logger.Info("replacing project SLA",
			"project", project.UUID, "old_doc", prev.DocUUID, "new_doc", spec.DocUUID)
		if err := txn.DeleteSLA(prev.UUID); err != nil {
			return nil, err
		}
	}

	s := &structs.SLA{
		UUID:        uuid.Generate(),
		DocUUID:     spec.DocUUID,
		Description: spec.Description,
		StartDate:   spec.StartDate,
		EndDate:     spec.EndDate,
		UserGroupID: g.UUID,
		ProjectID:   project.UUID,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertSLA(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Update patches an SLA. It returns nil without error when the payload
// changed nothing. A forced update may move the agreement to another project;
// unlike create, moving onto a project that already carries an SLA is an
// error rather than a replacement.
func (m *SLAManager) Update(uuidArg string, upd *structs.SLAUpdate, force bool) (*structs.SLA, error) {
	defer metrics.MeasureSince([]string{"catalogd", "sla", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	s, err := txn.SLAByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("SLA %q: %w", uuidArg, structs.ErrNotFound)
	}

	out, err := m.updateTxn(txn, s, upd, force)
	if err != nil || out == nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// updateTxn applies the patch inside the caller's transaction, returning nil
// when nothing changed.
func (m *SLAManager) updateTxn(txn *state.Txn, s *structs.SLA, upd *structs.SLAUpdate, force bool) (*structs.SLA, error) {
	out := s.Copy()

	moved := false
	if force && upd.Project != nil && *upd.Project != out.ProjectID {
		project, err := txn.ProjectByUUID(*upd.Project)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, fmt.Errorf("cannot move SLA %q to project %q: %w",
				s.UUID, *upd.Project, structs.ErrUnknownProject)
		}
		occupant, err := txn.SLAByProject(project.UUID)
		if err != nil {
			return nil, err
		}
		if occupant != nil {
			return nil, fmt.Errorf("project %q already carries SLA %q", project.UUID, occupant.DocUUID)
		}
		out.ProjectID = project.UUID
		moved = true
	}

	changed := out.ApplyUpdate(upd, force)
	if !changed && !moved {
		return nil, nil
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertSLA(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an SLA.
func (m *SLAManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "sla", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	s, err := txn.SLAByUUID(uuidArg)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("SLA %q: %w", uuidArg, structs.ErrNotFound)
	}
	if err := txn.DeleteSLA(uuidArg); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

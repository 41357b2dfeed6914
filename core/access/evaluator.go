// Package access decides whether a requester may read or mutate a resource.
// It is a pure predicate over already-loaded state and performs no I/O.
package access

import "github.com/Garicore01/PlayBeat-Backend/errs"

// Level is the access level a request requires.
type Level int

const (
	Read Level = iota
	Write
)

// Decision is the evaluation outcome.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Requester is the authenticated identity attached to a request.
type Requester struct {
	UserID  int64
	IsAdmin bool
}

// Resource is any entity with a visibility flag and an owner set.
// model.Audio and model.List both satisfy it.
type Resource interface {
	Private() bool
	OwnerIDs() []int64
}

// Collaborative is a resource that additionally grants limited write
// authority (membership changes) to a collaborator set.
type Collaborative interface {
	Resource
	CollaboratorIDs() []int64
}

// OwnerSet is a deduplicated set of owner ids with O(1) membership.
type OwnerSet map[int64]struct{}

// NewOwnerSet builds an OwnerSet from a slice, dropping duplicates.
func NewOwnerSet(ids []int64) OwnerSet {
	set := make(OwnerSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is in the set.
func (s OwnerSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// CanAccess evaluates whether the requester may access the resource at the
// required level.
//
// Read is allowed when the resource is public, the requester is an admin, or
// the requester is an owner. Write is allowed only for admins and owners.
//
// An empty owner set is a data-integrity violation: every resource gains its
// creator as first owner at creation, so a resource without owners cannot be
// attributed and evaluation fails with a ResourceInconsistent error instead
// of silently allowing or denying.
func CanAccess(req Requester, res Resource, level Level) (Decision, error) {
	if req.IsAdmin {
		return Allow, nil
	}

	// Public reads never consult the owner set, so they stay reachable even
	// for a resource whose ownership rows were lost.
	if level == Read && !res.Private() {
		return Allow, nil
	}

	owners := NewOwnerSet(res.OwnerIDs())
	if len(owners) == 0 {
		return Deny, errs.New(errs.KindResourceInconsistent, "Resource has no owners")
	}

	if owners.Contains(req.UserID) {
		return Allow, nil
	}

	return Deny, nil
}

// CanManageMembership evaluates write access for membership operations on a
// collaborative resource. Collaborators are granted this level, but not
// delete or ownership changes, which remain governed by CanAccess(Write).
func CanManageMembership(req Requester, res Collaborative) (Decision, error) {
	decision, err := CanAccess(req, res, Write)
	if err != nil || decision == Allow {
		return decision, err
	}

	collaborators := NewOwnerSet(res.CollaboratorIDs())
	if collaborators.Contains(req.UserID) {
		return Allow, nil
	}

	return Deny, nil
}

package rig

import (
	"fmt"
	"strings"
)

// ValidationError describes a single problem with a descriptor or a
// graph. Validation is read-only: an error is reported before any state
// changes, never after.
type ValidationError struct {
	ModuleID ModuleID // zero for descriptor-level findings
	Field    string
	Message  string
}

func (e ValidationError) Error() string {
	switch {
	case e.ModuleID.IsZero() && e.Field == "":
		return e.Message
	case e.ModuleID.IsZero():
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	default:
		return fmt.Sprintf("module %s: %s: %s", e.ModuleID.Short(), e.Field, e.Message)
	}
}

// ValidationErrors aggregates validation findings into one error value.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// GraphError is the common interface of errors returned by ParentageGraph
// mutations. All of them are rejected before mutation: the graph is left
// unchanged.
type GraphError interface {
	error
	graphError()
}

// CycleError reports a connect call that would create a cycle (including
// self-parenting).
type CycleError struct {
	Child, Parent ModuleID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("connecting %s under %s would create a cycle", e.Child.Short(), e.Parent.Short())
}
func (*CycleError) graphError() {}

// SelfMirrorError reports an attempt to parent a module to its own
// mirror peer.
type SelfMirrorError struct {
	Child, Parent ModuleID
}

func (e *SelfMirrorError) Error() string {
	return fmt.Sprintf("module %s cannot be parented to its mirror peer %s", e.Child.Short(), e.Parent.Short())
}
func (*SelfMirrorError) graphError() {}

// AlreadyChildError reports a connect call naming the child's current
// parent.
type AlreadyChildError struct {
	Child, Parent ModuleID
}

func (e *AlreadyChildError) Error() string {
	return fmt.Sprintf("module %s is already a child of %s", e.Child.Short(), e.Parent.Short())
}
func (*AlreadyChildError) graphError() {}

// DanglingReferenceError reports a reference to a module or node that
// does not exist in the graph.
type DanglingReferenceError struct {
	ID      ModuleID
	Node    int // -1 when the module itself is missing
	Context string
}

func (e *DanglingReferenceError) Error() string {
	if e.Node >= 0 {
		return fmt.Sprintf("%s: module %s has no node %d", e.Context, e.ID.Short(), e.Node)
	}
	return fmt.Sprintf("%s: module %s does not exist", e.Context, e.ID.Short())
}
func (*DanglingReferenceError) graphError() {}

// VersionIncompatibleError lists module instances whose schema version
// predates CurrentSchemaVersion. The modules are excluded from
// compilation; the rest of the graph is unaffected.
type VersionIncompatibleError struct {
	Modules  []ModuleID
	Required int
}

func (e *VersionIncompatibleError) Error() string {
	ids := make([]string, len(e.Modules))
	for i, id := range e.Modules {
		ids[i] = id.Short()
	}
	return fmt.Sprintf("%d module(s) below schema version %d: %s",
		len(e.Modules), e.Required, strings.Join(ids, ", "))
}

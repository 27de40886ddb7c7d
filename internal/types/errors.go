package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every terminal failure of a transaction.
type ErrorKind string

const (
	KindNotFound                ErrorKind = "not_found"
	KindAlreadyInstalled        ErrorKind = "already_installed"
	KindAlreadyRemoved          ErrorKind = "already_removed"
	KindAmbiguousSelection      ErrorKind = "ambiguous_selection"
	KindRequirementsUnmet       ErrorKind = "requirements_unmet"
	KindPipRequirementsUnmet    ErrorKind = "pip_requirements_unmet"
	KindSystemRequirementsUnmet ErrorKind = "system_requirements_unmet"
	KindTransportFailure        ErrorKind = "transport_failure"
	KindCancelled               ErrorKind = "cancelled"
	KindUnclassified            ErrorKind = "unclassified"
)

// SkillError tags a failure with its kind and the skill it concerns.
type SkillError struct {
	Kind  ErrorKind
	Skill string
	Err   error
}

func NewSkillError(kind ErrorKind, skill string, cause error) *SkillError {
	return &SkillError{Kind: kind, Skill: skill, Err: cause}
}

func (e *SkillError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Skill)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Skill, e.Err)
}

func (e *SkillError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var skillErr *SkillError
	if errors.As(err, &skillErr) {
		return skillErr.Kind, true
	}
	return "", false
}

// AmbiguousMatchError is raised by a catalog lookup that matched several
// entries equally well.
type AmbiguousMatchError struct {
	Query      string
	Candidates []SkillEntry
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d skills match %q", len(e.Candidates), e.Query)
}

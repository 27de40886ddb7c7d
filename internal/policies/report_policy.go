package policies

import (
	"context"
	"errors"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"skill-installer/internal/types"
)

var reportKeys = map[types.ErrorKind]types.ReportKey{
	types.KindNotFound:                types.ReportErrNotFound,
	types.KindAlreadyInstalled:        types.ReportErrAlreadyInstalled,
	types.KindAlreadyRemoved:          types.ReportErrAlreadyRemoved,
	types.KindAmbiguousSelection:      types.ReportErrTooManySkills,
	types.KindRequirementsUnmet:       types.ReportErrSkillRequirements,
	types.KindPipRequirementsUnmet:    types.ReportErrPipRequirements,
	types.KindSystemRequirementsUnmet: types.ReportErrSystemRequirements,
	types.KindTransportFailure:        types.ReportErrFilesystem,
	types.KindCancelled:               types.ReportCancelled,
	types.KindUnclassified:            types.ReportErrOther,
}

// ReportKeyFor maps an error kind to its acknowledgment.
func ReportKeyFor(kind types.ErrorKind) types.ReportKey {
	if key, ok := reportKeys[kind]; ok {
		return key
	}
	return types.ReportErrOther
}

// Classify determines the kind of a transaction failure.
func Classify(err error) types.ErrorKind {
	if err == nil {
		return ""
	}
	if kind, ok := types.KindOf(err); ok {
		return kind
	}
	if errors.Is(err, context.Canceled) {
		return types.KindCancelled
	}
	var ambiguous *types.AmbiguousMatchError
	if errors.As(err, &ambiguous) {
		return types.KindAmbiguousSelection
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeNotFound:
		return types.KindNotFound
	case errbuilder.CodeAlreadyExists:
		return types.KindAlreadyInstalled
	case errbuilder.CodeFailedPrecondition:
		return types.KindRequirementsUnmet
	default:
		return types.KindUnclassified
	}
}

// NamesSkill reports whether the acknowledgment for kind should carry the
// resolved skill name rather than what the user said.
func NamesSkill(kind types.ErrorKind) bool {
	switch kind {
	case types.KindNotFound, types.KindAlreadyInstalled, types.KindAlreadyRemoved:
		return true
	default:
		return false
	}
}

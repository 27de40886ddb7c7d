package types

// ReportKey identifies a user-facing acknowledgment. The values are an
// external contract shared with the dialog files.
type ReportKey string

const (
	ReportInstallComplete     ReportKey = "install.complete"
	ReportInstallBetaComplete ReportKey = "install.beta.complete"
	ReportRemoveComplete      ReportKey = "remove.complete"
	ReportAlreadyBeta         ReportKey = "already.beta"
	ReportIsInstalled         ReportKey = "is.installed"
	ReportIsNotInstalled      ReportKey = "is.not.installed"
	ReportAvailableSkills     ReportKey = "some.available.skills"
	ReportNoAvailableSkills   ReportKey = "no.available.skills"
	ReportCancelled           ReportKey = "cancelled"

	ReportErrNotFound           ReportKey = "error.not.found"
	ReportErrAlreadyInstalled   ReportKey = "error.already.installed"
	ReportErrAlreadyRemoved     ReportKey = "error.already.removed"
	ReportErrTooManySkills      ReportKey = "error.too.many.skills"
	ReportErrSkillRequirements  ReportKey = "error.skill.requirements"
	ReportErrPipRequirements    ReportKey = "error.pip.requirements"
	ReportErrSystemRequirements ReportKey = "error.system.requirements"
	ReportErrFilesystem         ReportKey = "error.filesystem"
	ReportErrOther              ReportKey = "error.other"
)

// Outcome is the single acknowledgment a transaction ends with.
type Outcome struct {
	Key   ReportKey
	Skill string
	Data  map[string]string
}

// SelectionState is the terminal state of an interactive narrowing step.
type SelectionState int

const (
	SelectionSelected SelectionState = iota
	SelectionAborted
	SelectionReported
)

func (s SelectionState) String() string {
	switch s {
	case SelectionSelected:
		return "selected"
	case SelectionAborted:
		return "aborted"
	case SelectionReported:
		return "reported"
	default:
		return "unknown"
	}
}

// Selection is the result of disambiguation.
type Selection struct {
	State SelectionState
	Entry SkillEntry
	Kind  ErrorKind
}

// Decision is the result of a confirmation prompt.
type Decision int

const (
	DecisionDeclined Decision = iota
	DecisionAccepted
)

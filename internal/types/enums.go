package types

// DependencyType names the package ecosystem a skill requirement belongs to.
type DependencyType string

const (
	DependencyTypeApt DependencyType = "apt"
	DependencyTypePip DependencyType = "pip"
)

type ConstraintOp string

const (
	ConstraintOpNone   ConstraintOp = ""
	ConstraintOpEq     ConstraintOp = "="
	ConstraintOpEq2    ConstraintOp = "=="
	ConstraintOpNe     ConstraintOp = "!="
	ConstraintOpCompat ConstraintOp = "~="
	ConstraintOpGte    ConstraintOp = ">="
	ConstraintOpLte    ConstraintOp = "<="
	ConstraintOpGt     ConstraintOp = ">"
	ConstraintOpLt     ConstraintOp = "<"
)

// Action is the user-facing verb a transaction was issued with.
type Action string

const (
	ActionInstall     Action = "install"
	ActionInstallBeta Action = "install-beta"
	ActionRemove      Action = "remove"
	ActionQuery       Action = "query"
	ActionList        Action = "list"
	ActionCustom      Action = "install-custom"
	ActionReconcile   Action = "reconcile"
)

// DialogVariant selects which confirmation prompt is presented.
type DialogVariant string

const (
	DialogInstall     DialogVariant = "install.confirm"
	DialogReinstall   DialogVariant = "reinstall.confirm"
	DialogInstallBeta DialogVariant = "install.beta.confirm"
	DialogUpgradeBeta DialogVariant = "upgrade.beta.confirm"
	DialogRemove      DialogVariant = "remove.confirm"
)

// PromptChooseSkill is the prompt used while disambiguating.
const PromptChooseSkill = "choose.skill"

type ManifestBackend string

const (
	ManifestBackendFile   ManifestBackend = "file"
	ManifestBackendSQLite ManifestBackend = "sqlite"
)

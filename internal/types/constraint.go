package types

// Constraint is a parsed requirement such as "requests>=2.0".
type Constraint struct {
	Name    string
	Op      ConstraintOp
	Version string
	Source  string
}

// Dependency groups every constraint a skill places on one package.
type Dependency struct {
	Name        string
	Type        DependencyType
	Constraints []Constraint
}

package core

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"skill-installer/internal/types"
)

// ParseDirective decodes a JSON or YAML directive. A payload that is itself
// a quoted document is unwrapped once.
func ParseDirective(payload string) (types.Directive, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return types.Directive{}, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(payload), &node); err != nil {
		return types.Directive{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid directive payload").
			WithCause(err)
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 && node.Content[0].Kind == yaml.ScalarNode {
		inner := strings.TrimSpace(node.Content[0].Value)
		if inner == "" || inner == payload {
			return types.Directive{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("directive payload is not a mapping")
		}
		var embedded yaml.Node
		if err := yaml.Unmarshal([]byte(inner), &embedded); err != nil {
			return types.Directive{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid embedded directive payload").
				WithCause(err)
		}
		node = embedded
	}
	var directive types.Directive
	if err := node.Decode(&directive); err != nil {
		return types.Directive{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid directive format").
			WithCause(err)
	}
	return directive, nil
}

package adapters

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"skill-installer/internal/ports"
	"skill-installer/internal/types"
)

var promptText = map[string]string{
	types.PromptChooseSkill:         "Which skill did you mean: {skills}?",
	string(types.DialogInstall):     "Install {skill} by {author}?",
	string(types.DialogReinstall):   "{skill} is already installed. Reinstall it?",
	string(types.DialogInstallBeta): "Install the beta version of {skill} by {author}?",
	string(types.DialogUpgradeBeta): "Switch {skill} to its beta version?",
	string(types.DialogRemove):      "Remove {skill} by {author}?",
}

// ConsoleAskAdapter renders a prompt and reads a single line as the response.
type ConsoleAskAdapter struct {
	Out io.Writer
	mu  sync.Mutex
	in  *bufio.Reader
}

func NewConsoleAskAdapter(in io.Reader, out io.Writer) *ConsoleAskAdapter {
	return &ConsoleAskAdapter{Out: out, in: bufio.NewReader(in)}
}

// Ask returns an empty response on end of input. Retries are not supported;
// maxRetries is accepted for port compatibility.
func (a *ConsoleAskAdapter) Ask(ctx context.Context, prompt string, data map[string]string, maxRetries int) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(a.Out, "%s ", renderPrompt(prompt, data)); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write prompt").
			WithCause(err)
	}
	line, err := a.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read response").
			WithCause(err)
	}
	return strings.TrimSpace(line), nil
}

func renderPrompt(prompt string, data map[string]string) string {
	text, ok := promptText[prompt]
	if !ok {
		text = prompt
	}
	for key, value := range data {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}
	return text
}

// ConsoleReporterAdapter prints the report key followed by its data.
type ConsoleReporterAdapter struct {
	Out io.Writer
	mu  sync.Mutex
}

func NewConsoleReporterAdapter(out io.Writer) *ConsoleReporterAdapter {
	return &ConsoleReporterAdapter{Out: out}
}

func (a *ConsoleReporterAdapter) Report(ctx context.Context, outcome types.Outcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var b strings.Builder
	b.WriteString(string(outcome.Key))
	if outcome.Skill != "" {
		fmt.Fprintf(&b, " skill=%s", outcome.Skill)
	}
	keys := make([]string, 0, len(outcome.Data))
	for key, value := range outcome.Data {
		if key == "skill" && value == outcome.Skill && outcome.Skill != "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%q", key, outcome.Data[key])
	}
	b.WriteString("\n")
	if _, err := io.WriteString(a.Out, b.String()); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write report").
			WithCause(err)
	}
	return nil
}

var _ ports.AskPort = (*ConsoleAskAdapter)(nil)
var _ ports.ReporterPort = (*ConsoleReporterAdapter)(nil)

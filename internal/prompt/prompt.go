// prompt хранит шаблоны запросов к LLM по сценариям.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrUnknownTemplate — шаблон с таким именем не зарегистрирован.
var ErrUnknownTemplate = errors.New("unknown prompt template")

// Prompt — готовый к отправке запрос: системная инструкция и сообщение пользователя.
type Prompt struct {
	System string
	User   string
}

// Имена шаблонов.
const (
	NewsSummary      = "news_summary"
	NewsAnalysis     = "news_analysis"
	Chat             = "chat"
	ContractGenerate = "contract_generate"
	ContractAudit    = "contract_audit"
	TradeAdvice      = "trade_advice"
)

type pair struct {
	system *template.Template
	user   *template.Template
}

var registry = map[string]pair{}

func register(name, system, user string) {
	registry[name] = pair{
		system: template.Must(template.New(name + ".system").Option("missingkey=error").Parse(system)),
		user:   template.Must(template.New(name + ".user").Option("missingkey=error").Parse(user)),
	}
}

// Render подставляет vars в шаблон name.
func Render(name string, vars any) (Prompt, error) {
	const op = "prompt.Render"

	p, ok := registry[name]
	if !ok {
		return Prompt{}, fmt.Errorf("%s: %s: %w", op, name, ErrUnknownTemplate)
	}

	system, err := execute(p.system, vars)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %s: system: %w", op, name, err)
	}
	user, err := execute(p.user, vars)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %s: user: %w", op, name, err)
	}

	return Prompt{System: system, User: user}, nil
}

func execute(t *template.Template, vars any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, vars); err != nil {
		return "", err
	}

	return strings.TrimSpace(b.String()), nil
}

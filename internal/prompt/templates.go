package prompt

// NewsVars — переменные шаблонов news_summary и news_analysis.
type NewsVars struct {
	Title    string
	Excerpt  string
	Category string
	Limit    int
}

// ChatTurn — одна реплика истории диалога.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatVars — переменные шаблона chat.
type ChatVars struct {
	Message string
	History []ChatTurn
}

// ContractVars — переменные шаблонов contract_generate и contract_audit.
type ContractVars struct {
	Description string
	Kind        string
	Source      string
}

// TradeVars — переменные шаблона trade_advice. Market пустой, если котировку найти не удалось.
type TradeVars struct {
	Symbol string
	Market string
}

func init() {
	register(NewsSummary,
		`You are a concise crypto news editor. Reply with plain text only, no markdown, at most {{.Limit}} characters.`,
		`Summarize this Web3 news in one sentence.
Title: {{.Title}}
Excerpt: {{.Excerpt}}`)

	register(NewsAnalysis,
		`You are a Web3 market analyst. Reply with plain text only, no markdown, at most {{.Limit}} characters.`,
		`Explain why this {{.Category}} news matters for the ecosystem.
Title: {{.Title}}
Excerpt: {{.Excerpt}}`)

	register(Chat,
		`You are a helpful Web3 assistant. Answer questions about blockchains, DeFi, NFTs, DAOs and smart contracts. Be accurate and say when you are unsure.`,
		`{{range .History}}{{.Role}}: {{.Content}}
{{end}}user: {{.Message}}`)

	register(ContractGenerate,
		`You are a senior Solidity engineer. Produce a single compilable Solidity ^0.8 contract using OpenZeppelin where appropriate. Return only the code block followed by a short explanation.`,
		`Contract type: {{if .Kind}}{{.Kind}}{{else}}custom{{end}}
Requirements:
{{.Description}}`)

	register(ContractAudit,
		`You are a smart contract security auditor. List findings ordered by severity (critical, high, medium, low, informational) with line references and fixes.`,
		"Audit the following Solidity source:\n```solidity\n{{.Source}}\n```")

	register(TradeAdvice,
		`You are a cautious crypto trading assistant. Give balanced, educational analysis, mention risks, and never promise returns. This is not financial advice.`,
		`Token: {{.Symbol}}
{{if .Market}}Market snapshot: {{.Market}}
{{end}}Give a short outlook with entry considerations, risks and what to watch.`)
}

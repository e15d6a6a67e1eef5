package strategy

import "strings"

// DefaultStrategy lets the model choose its own approach.
const DefaultStrategy = "ai_decide"

// fallbackStrategy is used for ids without a dedicated template.
const fallbackStrategy = "smart_money"

// Prompts holds the system prompt template of each base strategy.
var Prompts = map[string]string{
	"smart_money": `You are an expert Smart Money Concepts (SMC) trader. Analyze market structure, order blocks, fair value gaps, and liquidity zones. Look for:
- Break of Structure (BOS) and Change of Character (ChoCH)
- Order blocks at key swing points
- Fair value gaps (imbalances)
- Liquidity sweeps before reversals
- Premium and discount zones using Fibonacci`,

	"scalping": `You are an expert scalper focusing on quick, high-probability trades. Look for:
- Strong momentum moves
- Clear support/resistance levels
- RSI divergences on lower timeframes
- MACD crossovers with confirmation
- Quick entries with tight stops`,

	"swing": `You are a swing trader looking for multi-day moves. Analyze:
- Daily and 4H trend direction
- Key support and resistance levels
- Moving average relationships (20/50/200)
- RSI oversold/overbought conditions
- MACD trend confirmation`,

	"breakout": `You are a breakout trader. Focus on:
- Consolidation patterns and ranges
- Volume confirmation on breakouts
- False breakout identification
- Support/resistance levels
- Momentum indicators`,

	"trend_following": `You are a trend following trader. Analyze:
- Higher highs and higher lows (uptrend)
- Lower highs and lower lows (downtrend)
- Moving average alignment
- Trend strength indicators
- Pullback entry opportunities`,
}

const analystRules = `You are a professional trading analyst. Provide actionable trade setups with specific entry, stop loss, and take profit levels.

RULES:
- Always specify exact price levels
- Risk/reward should be at least 1:2
- Be conservative with confidence scores
- Consider current market conditions
- Never trade against the major trend`

// BuildSystemPrompt assembles the system prompt for a base strategy, optional
// extra instructions and optional user rule text.
func BuildSystemPrompt(baseStrategy, customPrompt, rules string) string {
	tmpl, ok := Prompts[baseStrategy]
	if !ok {
		tmpl = Prompts[fallbackStrategy]
	}

	var b strings.Builder
	b.WriteString(tmpl)
	b.WriteString("\n\n")
	b.WriteString(analystRules)

	if customPrompt != "" {
		b.WriteString("\n\nADDITIONAL INSTRUCTIONS:\n")
		b.WriteString(customPrompt)
	}

	if rules != "" {
		b.WriteString("\n\n## User's Trading Strategy Rules\n\n")
		b.WriteString("The following are the user's custom trading rules and methodology. You MUST follow these rules when analyzing:\n\n")
		b.WriteString(rules)
		b.WriteString("\n\nApply these rules strictly when making trading decisions.")
	}

	return b.String()
}

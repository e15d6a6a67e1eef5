package llm

// SignalSchema is the JSON schema of model.TradeSignal sent with every request.
var SignalSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"hasValidSetup": map[string]any{
			"type":        "boolean",
			"description": "Whether there is a valid trade setup based on the analysis",
		},
		"direction": map[string]any{
			"type":        "string",
			"enum":        []string{"BUY", "SELL"},
			"description": "Trade direction - BUY for long, SELL for short",
		},
		"entryPrice": map[string]any{
			"type":        "number",
			"description": "Recommended entry price for the trade",
		},
		"stopLoss": map[string]any{
			"type":        "number",
			"description": "Stop loss price level",
		},
		"takeProfit": map[string]any{
			"type":        "number",
			"description": "Take profit price level",
		},
		"confidence": map[string]any{
			"type":        "number",
			"minimum":     0,
			"maximum":     100,
			"description": "Confidence score from 0-100 based on setup quality",
		},
		"reasoning": map[string]any{
			"type":        "string",
			"description": "Detailed explanation of the trade setup and why it was identified",
		},
		"keyLevels": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"support": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "number"},
					"description": "Key support levels identified",
				},
				"resistance": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "number"},
					"description": "Key resistance levels identified",
				},
			},
			"required":             []string{"support", "resistance"},
			"additionalProperties": false,
		},
		"marketStructure": map[string]any{
			"type":        "string",
			"description": "Current market structure analysis (bullish, bearish, ranging)",
		},
	},
	"required": []string{
		"hasValidSetup", "direction", "entryPrice", "stopLoss", "takeProfit",
		"confidence", "reasoning", "keyLevels", "marketStructure",
	},
	"additionalProperties": false,
}

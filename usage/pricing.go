package usage

import "strings"

// price is USD per one million tokens.
type price struct {
	input  float64
	output float64
}

var prices = map[string]price{
	"gpt-4o-mini":   {0.15, 0.60},
	"gpt-4o":        {5.00, 15.00},
	"gpt-3.5-turbo": {0.50, 1.50},
	"gpt-4.1-mini":  {0.40, 1.60},
	"gpt-4.1-nano":  {0.10, 0.40},
	"gpt-4.1":       {2.00, 8.00},

	"claude-3-5-haiku":  {0.80, 4.00},
	"claude-3-haiku":    {0.25, 1.25},
	"claude-3-5-sonnet": {3.00, 15.00},
	"claude-3-7-sonnet": {3.00, 15.00},
	"claude-sonnet-4":   {3.00, 15.00},
	"claude-opus-4":     {15.00, 75.00},

	"gemini-1.5-flash": {0.075, 0.30},
	"gemini-1.5-pro":   {1.25, 5.00},
	"gemini-2.0-flash": {0.10, 0.40},
	"gemini-2.5-flash": {0.30, 2.50},
	"gemini-2.5-pro":   {1.25, 10.00},
}

// Cost returns the USD cost of one call. Unknown models cost 0. Dated or
// suffixed ids such as "gpt-4o-mini-2024-07-18" use the longest known prefix.
func Cost(model string, promptTokens, completionTokens int) float64 {
	p, ok := lookup(model)
	if !ok {
		return 0
	}
	return float64(promptTokens)/1e6*p.input + float64(completionTokens)/1e6*p.output
}

func lookup(model string) (price, bool) {
	model = strings.ToLower(strings.TrimSpace(model))
	if p, ok := prices[model]; ok {
		return p, true
	}

	best := ""
	for name := range prices {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return price{}, false
	}
	return prices[best], true
}

package app

import (
	"fmt"

	"go.aimuz.me/quill/internal/types"
	"go.aimuz.me/quill/llm"
)

// prompt is a ready-to-send prompt pair with its sampling parameters.
type prompt struct {
	op          types.Operation
	system      string
	user        string
	temperature float64
	maxTokens   int
}

func (p prompt) messages() []llm.Message {
	return []llm.Message{
		{Role: "system", Content: p.system},
		{Role: "user", Content: p.user},
	}
}

func correctionPrompt(text, nativeLang string, tone *types.TonePreset) prompt {
	p := prompt{
		op:          types.OpCorrection,
		temperature: 0.3,
		maxTokens:   2000,
	}

	if tone == nil {
		p.system = fmt.Sprintf(
			"You are an expert in %s and English spelling and grammar. Correct errors precisely while preserving the meaning and tone of the original as much as possible.",
			nativeLang)
		p.user = "Correct the spelling and grammar of the following text. Return only the corrected text without explanations:\n\n" + text
		return p
	}

	p.system = fmt.Sprintf(
		"You are an expert in %s and English spelling and grammar. Correct errors precisely, then completely ignore the tone and manner of the original, keep only its meaning, and rewrite it entirely in the requested tone (%s).",
		nativeLang, tone.Description)
	p.user = fmt.Sprintf(
		"Correct the spelling and grammar, completely ignore the tone of the original and keep only its content, and convert it to the following tone.\n\nTone: %s\nDescription: %s\n\nReturn only the corrected and tone-converted text without explanations:\n\n%s",
		tone.Name, tone.Description, text)
	return p
}

func translationPrompt(text, sourceLang, targetLang string) prompt {
	return prompt{
		op:          types.OpTranslation,
		system:      "You are a professional translator. Provide accurate and natural translations.",
		user:        fmt.Sprintf("Translate the following %s text to %s. Return only the translation without explanations:\n\n%s", sourceLang, targetLang, text),
		temperature: 0.3,
		maxTokens:   2000,
	}
}

func variableNamePrompt(text string) prompt {
	return prompt{
		op:     types.OpVariableNames,
		system: "You are a programming expert who turns natural-language descriptions into meaningful English variable names. Follow common naming conventions and use camelCase.",
		user: "Suggest 3 variable names for the following text. Each name must be camelCase and clearly convey the meaning.\n\nText: " + text +
			"\n\nReturn each name on its own line. Do not add explanations or numbering. Return only the names.",
		temperature: 0.5,
		maxTokens:   200,
	}
}

func functionNamePrompt(text string) prompt {
	return prompt{
		op:     types.OpFunctionNames,
		system: "You are a programming expert who turns natural-language descriptions into meaningful English function names. Function names start with a verb, follow common naming conventions and use PascalCase.",
		user: "Suggest 3 function names for the following text. Each name must be PascalCase, start with a verb and clearly convey what the function does.\n\nText: " + text +
			"\n\nReturn each name on its own line. Do not add explanations or numbering. Return only the names.",
		temperature: 0.5,
		maxTokens:   200,
	}
}

func questionPrompt(question, answerLang string) prompt {
	return prompt{
		op:          types.OpCommonQuestion,
		system:      "You are a helpful AI assistant. Give accurate, useful answers that are clear and easy to understand, with examples where they help.",
		user:        fmt.Sprintf("Answer the following question concisely and accurately. Write the answer in %s and add English terms in parentheses where useful.\n\nQuestion: %s", answerLang, question),
		temperature: 0.7,
		maxTokens:   1000,
	}
}

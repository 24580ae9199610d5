package generation

import (
	"fmt"
	"strings"

	"github.com/marketerz/marketerz/pkg/prompts"
)

const persona = `You are a 'Marketerz Prompt Engineer', an expert in crafting meticulous and effective prompts for advanced AI models.`

const fieldRequirements = `- The ` + "`category`" + ` of the prompt.
- A ` + "`purpose`" + ` statement.
- A ` + "`tokensHint`" + ` for the input prompt's length.
- An ` + "`expectedOutputSize`" + ` for the generated content.
- The final ` + "`prompt`" + ` itself, which should be detailed, clear, and structured for optimal AI performance.`

func bulkInstruction(categories []prompts.Category) string {
	goal := fmt.Sprintf("%d distinct, highly-optimized prompts", len(categories))
	if len(categories) == 1 {
		goal = "a single, highly-optimized prompt"
	}

	var b strings.Builder
	b.WriteString(persona + "\n")
	fmt.Fprintf(&b, "Your goal is to transform a user's raw marketing idea into %s.\n", goal)
	fmt.Fprintf(&b, "Each prompt must target a different output category from the following list: %s.\n\n", prompts.JoinCategories(categories))
	b.WriteString("The available categories are:\n")
	for i, c := range prompts.AllCategories() {
		fmt.Fprintf(&b, "%d.  **%s:** %s\n", i+1, c, c.Description())
	}
	b.WriteString("\nFor each of the requested prompts, you MUST provide:\n")
	b.WriteString(fieldRequirements + "\n\n")
	b.WriteString("The tone of your output must be meticulous and technical. You must adhere strictly to the provided JSON schema.\n")
	return b.String()
}

func singleInstruction(category prompts.Category) string {
	var b strings.Builder
	b.WriteString(persona + "\n")
	fmt.Fprintf(&b, "Your goal is to transform a user's raw marketing idea into a SINGLE, highly-optimized prompt for the specified category: %q.\n\n", category)
	fmt.Fprintf(&b, "The prompt must target the output category: **%s**\n", category)
	for _, c := range prompts.AllCategories() {
		fmt.Fprintf(&b, "- **%s:** %s\n", c, c.Description())
	}
	b.WriteString("\nYou MUST provide:\n")
	b.WriteString(strings.Replace(fieldRequirements, "of the prompt.", fmt.Sprintf("of the prompt, which must be %q.", category), 1) + "\n\n")
	b.WriteString("The tone of your output must be meticulous and technical. You must adhere strictly to the provided JSON schema for a single prompt object.\n")
	return b.String()
}

func ideaContents(idea string) string {
	return fmt.Sprintf("Here is the user's idea: [[%s]]", idea)
}

package service

// InstructionsService serves the static usage directions for generated
// context files.
type InstructionsService struct{}

// NewInstructionsService creates an InstructionsService.
func NewInstructionsService() *InstructionsService {
	return &InstructionsService{}
}

// CopyInstructions returns the per-LLM copy instructions markdown.
func (s *InstructionsService) CopyInstructions() string {
	return copyInstructions
}

const copyInstructions = `# Using Your Generated Context

The generated context file is plain LLM-agnostic markdown. Pick your
target below and copy the content accordingly.

## Claude (Anthropic)

1. Save the generated context as ` + "`CLAUDE.md`" + ` in your project root
2. Claude reads it automatically at the start of a session
3. Regenerate the file after the project structure changes

## ChatGPT (OpenAI)

1. Create a new Project in ChatGPT
2. Paste the content into the Project's Custom Instructions
3. Large contexts work better uploaded to the Project's Knowledge base

## Gemini (Google)

1. Firebase Studio: save as ` + "`.idx/airules.md`" + `
2. GitHub integration: save as ` + "`.gemini/styleguide.md`" + `
3. Otherwise paste the relevant sections into the conversation

## Other LLMs

- Use the document as a system prompt or opening message
- Trim sections you do not need before pasting
- Keep the coding standards section intact

## Tips

- Run estimate_tokens on the file before pasting into a size-limited chat
- Run optimize_context when the estimate comes back high and apply its suggestions
- Commit the generated file so the whole team shares the same context`

package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to built-in defaults.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptPersona is the system preamble sent with every generation call.
	// It has no format placeholders.
	PromptPersona = "persona"

	// PromptAnswer wraps the assembled context and the question.
	// The template expects two %s placeholders: context, then question.
	PromptAnswer = "answer"
)

// DefaultPersona is the built-in persona.
const DefaultPersona = "You are Luna, an expert in energy and market management. " +
	"Answer precisely using only the provided context and cite sources as [chunk <ID>]."

// DefaultAnswerTemplate is the built-in answer prompt.
const DefaultAnswerTemplate = "Context:\n%s\n\nQuestion: %s"

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses the built-in defaults.
	SetPromptStore(store PromptStore)
}

package ask

// FallbackText is the fixed answer returned when retrieval produced nothing
// to ground an answer in. It is never generated by the model.
const FallbackText = "I couldn't find anything in your notes that answers this question. " +
	"Try adding more notes to this book or series, or rephrasing the question."

// shouldAnswer is the pre-generation confidence gate: the model is only
// invoked when retrieval produced at least one usable note or chunk. This
// is a hard guarantee; the system never asks the model to answer from empty
// context.
func shouldAnswer(eligible int) bool {
	return eligible > 0
}

// fallbackAnswer returns the fixed low-confidence answer. The model field
// records the configured model even though no provider call was made.
func fallbackAnswer(model string) Answer {
	return Answer{
		Text:          FallbackText,
		LowConfidence: true,
		Usage: Usage{
			Model: model,
		},
	}
}

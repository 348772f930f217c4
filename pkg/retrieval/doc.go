// Package retrieval resolves {slot} placeholders in prompt templates.
//
// A Strategy owns the live slot map for one session and turns template text
// into concrete text. Two strategies are provided:
//
//   - Literal replaces {name} with the slot map value for name.
//   - MappedEmbedding replaces configured placeholders with the reference
//     text whose embedding is closest to a query built from other slots, and
//     falls back to literal lookup for everything else.
//
// Every placeholder is resolved before any replacement is applied, and all
// replacements happen in a single pass: text inserted for one slot is never
// re-scanned, so a retrieved lesson that happens to contain "{x}" stays as is.
//
// A placeholder with no resolution fails with *MissingSlotError, which
// matches ErrMissingSlot.
//
//	strategy, err := retrieval.NewMappedEmbedding(batcher, map[string]retrieval.Mapping{
//	    "rori_microlesson_texts": {QuerySlots: []string{"question", "lesson"}, Corpus: lessons},
//	})
//	strategy.UpdateMap(retrieval.SlotMap{"question": "2/3 + 1/6 = ?", "lesson": "Adding fractions"})
//	text, err := strategy.ResolveSlots(ctx, "Use this lesson:\n{rori_microlesson_texts}\nQuestion: {question}")
package retrieval

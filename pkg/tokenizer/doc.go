// Package tokenizer counts tokens the way the embedding provider does.
//
// Token counts shape embedding requests (see the embedding package batch
// planner), so they must come from the same encoding the provider applies to
// the model in use. Tiktoken wraps github.com/pkoukk/tiktoken-go with the
// offline BPE loader, so counting never reaches the network.
//
// # Usage
//
//	counter, err := tokenizer.NewTiktoken("text-embedding-ada-002")
//	if err != nil {
//	    return err
//	}
//	n := counter.Count("What is 2+2?")
//	counts := tokenizer.CountAll(counter, texts)
//
// Estimator is a word based approximation for callers that only need a rough
// figure (logging, budgeting hints). It must not be used to shape requests.
package tokenizer

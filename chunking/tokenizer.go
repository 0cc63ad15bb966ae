package chunking

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenizerCache caches encoders per model, grounded on beeper/ai-bridge's
// pkg/aitokens/tokenizer.go GetTokenizer.
var (
	tokenizerCache   = make(map[string]*tiktoken.Tiktoken)
	tokenizerCacheMu sync.RWMutex
)

func getTokenizer(model string) (*tiktoken.Tiktoken, error) {
	tokenizerCacheMu.RLock()
	if tkm, ok := tokenizerCache[model]; ok {
		tokenizerCacheMu.RUnlock()
		return tkm, nil
	}
	tokenizerCacheMu.RUnlock()

	tokenizerCacheMu.Lock()
	defer tokenizerCacheMu.Unlock()

	if tkm, ok := tokenizerCache[model]; ok {
		return tkm, nil
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tkm, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	tokenizerCache[model] = tkm
	return tkm, nil
}

// countTokens measures token_count using a tokenizer consistent with the
// LLM's tokenization, falling back to len(text)/4 when unavailable (§4.4).
func countTokens(text, model string) int {
	tkm, err := getTokenizer(model)
	if err != nil || tkm == nil {
		if len(text) == 0 {
			return 0
		}
		est := len(text) / 4
		if est == 0 {
			est = 1
		}
		return est
	}
	return len(tkm.Encode(text, nil, nil))
}

package anthropic

// BuildCachedSystemBlocks wraps a system prompt in a single block marked for
// server-side prompt caching with a 1-hour TTL. Classification prompts are
// identical across every payee in a run, so caching the system block cuts
// input cost on all calls after the first.
func BuildCachedSystemBlocks(prompt string) []SystemBlock {
	return []SystemBlock{
		{
			Text:         prompt,
			CacheControl: &CacheControl{TTL: "1h"},
		},
	}
}

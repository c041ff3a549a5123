package run

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ZhouKai90/runlog/types"
)

func TestKeyBuilder_Properties(t *testing.T) {
	keys := NewKeyBuilder("runlog")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genTool := gen.OneConstOf(types.ToolWebSearch, types.ToolCalculator)

	properties.Property("same inputs always derive the same key", prop.ForAll(
		func(userID, prompt string, tool types.ToolType) bool {
			return keys.RunKey(userID, tool, prompt) == keys.RunKey(userID, tool, prompt)
		},
		gen.AlphaString(),
		gen.AnyString(),
		genTool,
	))

	properties.Property("different prompts derive different keys", prop.ForAll(
		func(userID, promptA, promptB string, tool types.ToolType) bool {
			if promptA == promptB {
				return true
			}
			return keys.RunKey(userID, tool, promptA) != keys.RunKey(userID, tool, promptB)
		},
		gen.AlphaString(),
		gen.AnyString(),
		gen.AnyString(),
		genTool,
	))

	properties.Property("different tools derive different keys", prop.ForAll(
		func(userID, prompt string) bool {
			return keys.RunKey(userID, types.ToolWebSearch, prompt) !=
				keys.RunKey(userID, types.ToolCalculator, prompt)
		},
		gen.AlphaString(),
		gen.AnyString(),
	))

	properties.Property("prompt content never adds key segments", prop.ForAll(
		func(prompt string) bool {
			key := keys.RunKey("u", types.ToolCalculator, prompt)
			segments := 1
			for i := 0; i < len(key); i++ {
				if key[i] == ':' {
					segments++
				}
			}
			return segments == 4
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

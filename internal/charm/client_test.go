// ABOUTME: Tests for charm client helpers that do not need a charm server
// ABOUTME: Verifies interaction key generation
package charm

import "testing"

func TestInteractionKey(t *testing.T) {
	if got := InteractionKey("01HX"); got != "interaction:01HX" {
		t.Errorf("InteractionKey() = %q, want interaction:01HX", got)
	}
}

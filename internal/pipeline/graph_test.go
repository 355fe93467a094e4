package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ygidtu/NetProphet-2.0/internal/command"
)

func TestController_WriteGraph(t *testing.T) {
	cfg := testConfig(t)
	seed(t, cfg, 1, 2)
	c, _ := newTestController(t, cfg, command.NewRecorder())

	var buf bytes.Buffer
	if err := c.WriteGraph(&buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	dot := strings.ToLower(buf.String())

	for _, want := range []string{
		"digraph",
		`"1" -> "2"`,
		`"10" -> "11"`,
		"3 stage-3",
		"#10b981", // complete
		"#f59e0b", // next
		"#9ca3af", // pending
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot output missing %q:\n%s", want, buf.String())
		}
	}
	if strings.Contains(dot, `"11" -> `) {
		t.Error("last stage should have no outgoing edge")
	}
}

package metrics

import (
	"strings"
	"testing"
)

func TestStageTimerOrderPreserved(t *testing.T) {
	st := NewStageTimer()
	st.Start("lex")
	st.Stop("lex")
	st.Start("parse")
	st.Stop("parse")
	st.Start("emit")
	st.Stop("emit")

	summary := st.Summary()
	lexIdx := strings.Index(summary, "lex")
	parseIdx := strings.Index(summary, "parse")
	emitIdx := strings.Index(summary, "emit")
	if lexIdx == -1 || parseIdx == -1 || emitIdx == -1 {
		t.Fatalf("expected all three stages in the summary, got:\n%s", summary)
	}
	if !(lexIdx < parseIdx && parseIdx < emitIdx) {
		t.Errorf("expected stages to appear in start order, got:\n%s", summary)
	}
}

func TestStageTimerIncludesTotal(t *testing.T) {
	st := NewStageTimer()
	st.Start("lex")
	st.Stop("lex")
	if !strings.Contains(st.Summary(), "total") {
		t.Errorf("expected a total line in the summary")
	}
}

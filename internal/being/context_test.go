package being

import (
	"errors"
	"testing"
	"time"

	"github.com/veleth/anima/internal/memory"
	"go.uber.org/zap"
)

func TestNewContextRequiresMemory(t *testing.T) {
	if _, err := NewContext(nil, time.Now()); !errors.Is(err, ErrNilMemory) {
		t.Errorf("err = %v, want ErrNilMemory", err)
	}
}

func TestContextPartitionsScratchData(t *testing.T) {
	sc, err := NewContext(memory.NewLog(zap.NewNop()), time.Now())
	if err != nil {
		t.Fatalf("context: %v", err)
	}

	sc.Put("web_research", "queries", []string{"a", "b"})
	sc.Put("fetch_news", "queries", "unrelated")

	v, ok := sc.Get("web_research", "queries")
	if !ok {
		t.Fatal("missing value")
	}
	if qs, ok := v.([]string); !ok || len(qs) != 2 {
		t.Errorf("value = %v", v)
	}

	part := sc.Category("fetch_news")
	if part["queries"] != "unrelated" {
		t.Errorf("partition leaked: %v", part)
	}
	if _, ok := sc.Get("emergent_research", "queries"); ok {
		t.Error("empty partition should miss")
	}
}

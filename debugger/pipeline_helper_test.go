package debugger

import (
	"testing"

	"github.com/go-pipesim/pipesim/memory"
	"github.com/go-pipesim/pipesim/pipeline"
)

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	l1 := memory.NewLevel("L1", 13, 4, 1)
	l2 := memory.NewLevel("L2", 13, 6, 2)
	ram := memory.NewRAM(13, 4, 4)
	sub := memory.NewSubsystem(l1, l2, ram)
	return pipeline.New(sub, 1000)
}

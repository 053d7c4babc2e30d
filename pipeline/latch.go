package pipeline

// latch is one of the four inter-stage registers (FD, DE, EM, MW). Current
// is what this cycle's stage functions read; Next is what they produce for
// the following cycle. Advance shifts Next into Current and resets Next to
// an empty bubble.
type latch struct {
	Current microOp
	Next    microOp
}

func newLatch() latch {
	return latch{Current: bubble(), Next: bubble()}
}

func (l *latch) advance() {
	l.Current = l.Next
	l.Next = bubble()
}

// hold keeps Current where it is for another cycle by re-feeding it into
// Next, instead of advancing.
func (l *latch) hold() {
	l.Next = l.Current
}

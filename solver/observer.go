package solver

// Observer receives search progress. Implementations must be cheap; they
// run inline with the search loop.
type Observer interface {
	RoundStarted()
	Expanded(successors int)
	Improved(cost int)
}

type nopObserver struct{}

func (nopObserver) RoundStarted() {}
func (nopObserver) Expanded(int)  {}
func (nopObserver) Improved(int)  {}

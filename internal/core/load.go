package core

// LoadState is the readiness of a detector
type LoadState int

const (
	Unready LoadState = iota
	Ready
)

func (s LoadState) String() string {
	if s == Ready {
		return "ready"
	}
	return "unready"
}

// LoadResult is the outcome of loading the vectorizer/classifier pair.
// A Ready result always holds both; an Unready one holds neither.
type LoadResult struct {
	State      LoadState
	Vectorizer Vectorizer
	Classifier Classifier
	Err        error
}

// Loaded builds a Ready result
func Loaded(vectorizer Vectorizer, classifier Classifier) LoadResult {
	if vectorizer == nil || classifier == nil {
		return Failed(ErrModelUnavailable)
	}
	return LoadResult{State: Ready, Vectorizer: vectorizer, Classifier: classifier}
}

// Failed builds an Unready result
func Failed(err error) LoadResult {
	if err == nil {
		err = ErrModelUnavailable
	}
	return LoadResult{State: Unready, Err: err}
}

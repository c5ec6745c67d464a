package bus

import (
	"sync"

	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// PatternProgress counts completed pattern-learning events per pattern.
type PatternProgress struct {
	mu        sync.Mutex
	completed map[string]int
}

// NewPatternProgress creates a pattern-progress observer.
func NewPatternProgress() *PatternProgress {
	return &PatternProgress{
		completed: make(map[string]int),
	}
}

// OnEvent implements Observer.
func (p *PatternProgress) OnEvent(evt event.Event) {
	if evt.Category() != event.CategoryPatternLearning {
		return
	}
	params := evt.Params()
	name, ok := params.String("pattern_name")
	if !ok {
		return
	}
	done, _ := params.Bool("completed")
	if !done {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed[name]++
}

// Completed returns how many times a pattern was completed.
func (p *PatternProgress) Completed(pattern string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed[pattern]
}

// Progress returns a copy of all completion counts.
func (p *PatternProgress) Progress() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.completed))
	for k, v := range p.completed {
		out[k] = v
	}
	return out
}

// ScoreWindow keeps a bounded rolling window of game scores.
// Once the window is full, the oldest score is evicted per new event.
type ScoreWindow struct {
	mu     sync.Mutex
	size   int
	scores []float64
}

// DefaultScoreWindowSize bounds the rolling window when no size is given.
const DefaultScoreWindowSize = 20

// NewScoreWindow creates a rolling score observer holding the last size
// scores. Non-positive sizes fall back to DefaultScoreWindowSize.
func NewScoreWindow(size int) *ScoreWindow {
	if size <= 0 {
		size = DefaultScoreWindowSize
	}
	return &ScoreWindow{size: size}
}

// OnEvent implements Observer.
func (w *ScoreWindow) OnEvent(evt event.Event) {
	if evt.Category() != event.CategoryGameProgress {
		return
	}
	score, ok := evt.Params().Number("score")
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.scores = append(w.scores, score)
	if len(w.scores) > w.size {
		w.scores = w.scores[len(w.scores)-w.size:]
	}
}

// Average returns the mean of the scores in the window, or 0 when empty.
func (w *ScoreWindow) Average() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range w.scores {
		sum += s
	}
	return sum / float64(len(w.scores))
}

// Best returns the highest score in the window, or 0 when empty.
func (w *ScoreWindow) Best() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	var best float64
	for _, s := range w.scores {
		if s > best {
			best = s
		}
	}
	return best
}

// Scores returns a copy of the current window, oldest first.
func (w *ScoreWindow) Scores() []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]float64(nil), w.scores...)
}

// InteractionTally counts UI interaction events per action.
type InteractionTally struct {
	mu      sync.Mutex
	total   int
	actions map[string]int
}

// NewInteractionTally creates an interaction-tally observer.
func NewInteractionTally() *InteractionTally {
	return &InteractionTally{
		actions: make(map[string]int),
	}
}

// OnEvent implements Observer.
func (t *InteractionTally) OnEvent(evt event.Event) {
	if evt.Category() != event.CategoryUserInteraction {
		return
	}
	action, ok := evt.Params().String("action")
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.actions[action]++
}

// Total returns the total number of interactions observed.
func (t *InteractionTally) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Count returns how often an action was observed.
func (t *InteractionTally) Count(action string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.actions[action]
}

package sequence

// PromptMessages are the playful lines the decline prompt picks from.
var PromptMessages = [...]string{
	"I can stay here all day 😏",
	"Not taking no for an answer! 💕",
	"Nice try, but I'm persistent 😘",
	"Did you really think that would work? 💝",
	"The 'No' button is just decoration! 😄",
}

const (
	// promptThreshold is the decline count from which the prompt replaces
	// the nudge.
	promptThreshold = 3
	shrinkStep      = 0.15

	wideMaxX, wideMaxY     = 200.0, 150.0
	narrowMaxX, narrowMaxY = 100.0, 80.0
)

// Roll carries the random draws a decline interaction consumes, so that
// Machine.Apply stays deterministic. X and Y are in [0, 1).
type Roll struct {
	X, Y    float64
	Message int
}

// Nudge is the decorative displacement of the decline control, in the
// presenter's own units, and its scale factor.
type Nudge struct {
	X, Y  float64
	Scale float64
}

// DeclineState is the per-session decline counter and its cosmetic effect.
type DeclineState struct {
	Count int
	Nudge Nudge
}

// Hint returns the nudge caption for the current count, if any.
func (d DeclineState) Hint() string {
	switch d.Count {
	case 1:
		return "Oops! The button moved 😅"
	case 2:
		return "It keeps moving! 🙈"
	default:
		return ""
	}
}

// Prompt is the dismissible decline prompt. Its only effective action is
// confirm.
type Prompt struct {
	Open    bool
	Message string
}

func initialDecline() DeclineState {
	return DeclineState{Nudge: Nudge{Scale: 1}}
}

// decline applies one decline interaction to d and reports whether the
// prompt must be surfaced.
func decline(d DeclineState, r Roll, wide bool) (DeclineState, Prompt, bool) {
	d.Count++
	if d.Count >= promptThreshold {
		return d, Prompt{Open: true, Message: pickMessage(r.Message)}, true
	}

	maxX, maxY := narrowMaxX, narrowMaxY
	if wide {
		maxX, maxY = wideMaxX, wideMaxY
	}
	d.Nudge = Nudge{
		X:     (clamp01(r.X) - 0.5) * maxX * 2,
		Y:     (clamp01(r.Y) - 0.5) * maxY * 2,
		Scale: 1 - float64(d.Count)*shrinkStep,
	}
	return d, Prompt{}, false
}

func pickMessage(i int) string {
	n := len(PromptMessages)
	i %= n
	if i < 0 {
		i += n
	}
	return PromptMessages[i]
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v >= 1:
		return 0.999999
	default:
		return v
	}
}

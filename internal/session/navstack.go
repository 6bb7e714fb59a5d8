package session

// View names an app-level screen for navigation history purposes.
type View string

const (
	ViewLanding   View = "LANDING"
	ViewWizard    View = "WIZARD"
	ViewAnalyzing View = "ANALYZING"
	ViewReport    View = "REPORT"
	ViewConsult   View = "CONSULT"
)

// NavStack records the screens a user moved through so a device back action
// can retrace them. Popping an empty stack lands on the landing screen.
type NavStack struct {
	Views []View `json:"views"`
}

func (n *NavStack) Push(v View) {
	n.Views = append(n.Views, v)
}

// Pop removes and returns the most recent view. Empty stack returns
// ViewLanding; backing out past the history always ends at the landing page.
func (n *NavStack) Pop() View {
	if len(n.Views) == 0 {
		return ViewLanding
	}
	v := n.Views[len(n.Views)-1]
	n.Views = n.Views[:len(n.Views)-1]
	return v
}

func (n *NavStack) Depth() int { return len(n.Views) }

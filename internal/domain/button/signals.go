package button

// Signals is everything a view needs to render the button for a loading flag.
type Signals struct {
	// IsLoading reports whether the busy indicator is visible.
	IsLoading bool
	// ContentAlpha is the opacity of the button title and image.
	ContentAlpha float64
	// AccessibilityLabel is what assistive technologies announce.
	AccessibilityLabel string
}

// ContentAlpha hides the button content while loading.
func ContentAlpha(isLoading bool) float64 {
	if isLoading {
		return 0
	}

	return 1
}

// AccessibilityLabel appends a loading hint to label while loading.
func AccessibilityLabel(label string, isLoading bool) string {
	if isLoading {
		return label + loadingSuffix
	}

	return label
}

// SignalsFor projects a loading flag into Signals.
func SignalsFor(label string, isLoading bool) Signals {
	return Signals{
		IsLoading:          isLoading,
		ContentAlpha:       ContentAlpha(isLoading),
		AccessibilityLabel: AccessibilityLabel(label, isLoading),
	}
}

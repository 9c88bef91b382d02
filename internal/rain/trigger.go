package rain

// RainTrigger is the scroll offset at which the rain stops: the headline
// reaching the configured share of the viewport, or one viewport height
// when there is no headline.
func RainTrigger(headlineTop float64, hasHeadline bool, viewportHeight, fraction float64) float64 {
	if !hasHeadline {
		return viewportHeight
	}
	return headlineTop - viewportHeight*fraction
}

// TextFadeTrigger is the scroll offset at which the type line fades out.
func TextFadeTrigger(logoTop, viewportHeight, fraction, margin float64) float64 {
	return logoTop - viewportHeight*fraction - margin
}

// UpdateRainGate pauses the rain once the headline comes into view and
// resumes it above that point. Repeated calls at one offset change nothing.
func (a *Animator) UpdateRainGate() {
	if a.inert || a.tornDown {
		return
	}
	vp := a.page.Store.Snapshot().Viewport
	var top float64
	if a.headline != nil {
		top = a.headline.Top
	}
	trigger := RainTrigger(top, a.headline != nil, vp.Height, a.profile.RainStopFraction)

	switch {
	case vp.ScrollY >= trigger && !a.paused:
		a.paused = true
		a.Stop()
		a.ctx.Save()
		a.ctx.SetTransform(1, 0, 0, 1, 0, 0)
		bw, bh := a.surface.BackingSize()
		a.ctx.ClearRect(0, 0, float64(bw), float64(bh))
		a.ctx.Restore()
		a.setOpacity(0)
		a.logger.Infof("rain", "paused at scroll %.0f (trigger %.0f)", vp.ScrollY, trigger)
	case vp.ScrollY < trigger && a.paused:
		a.paused = false
		a.setOpacity(1)
		a.Start()
		a.logger.Infof("rain", "resumed at scroll %.0f (trigger %.0f)", vp.ScrollY, trigger)
	case !a.paused:
		a.setOpacity(1)
	}
}

func (a *Animator) setOpacity(opacity float64) {
	a.opacity = opacity
	a.surface.SetOpacity(opacity)
}

// UpdateTextFade hides the type line wrapper as the logo approaches.
func (a *Animator) UpdateTextFade() {
	if a.inert || a.tornDown || a.typeLine == nil || a.logo == nil {
		return
	}
	wrapper := a.typeLine.Parent()
	if wrapper == nil {
		return
	}
	vp := a.page.Store.Snapshot().Viewport
	trigger := TextFadeTrigger(a.logo.Top, vp.Height, a.profile.TextFadeFraction, a.profile.TextFadeMargin)
	if vp.ScrollY >= trigger {
		wrapper.SetOpacity(0)
	} else {
		wrapper.SetOpacity(1)
	}
}

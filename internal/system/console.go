package system

// Console logs around the tty calls in the order a kiosk host needs them.
type Console struct {
	Logger Logger
}

// Enter switches to graphics mode and hides the cursor.
func (c Console) Enter() {
	c.log(SetGraphicsMode(), "KD_GRAPHICS set", "KD_GRAPHICS failed")
	c.log(HideCursor(), "cursor hidden", "hide cursor failed")
}

// Leave undoes Enter.
func (c Console) Leave() {
	c.log(ShowCursor(), "cursor shown", "show cursor failed")
	c.log(RestoreTextMode(), "KD_TEXT set", "KD_TEXT failed")
}

func (c Console) log(err error, ok, failed string) {
	if c.Logger == nil {
		return
	}
	if err != nil {
		c.Logger.Errorf("tty", "%s: %v", failed, err)
		return
	}
	c.Logger.Infof("tty", "%s", ok)
}

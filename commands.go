package halmark

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Quit stops the run loop after the current stage finishes. A nil error
// means a clean shutdown; a non-nil error is returned from App.Run.
func (cmd *Commands) Quit(err error) {
	cmd.app.quit(err)
}

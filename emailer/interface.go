package emailer

type Emailer interface {
	Send(toName string, to string, subject string, content string) error
}

// SendAsync fires a send in the background and exposes its outcome on the
// returned channel. The channel is buffered so a caller may ignore it.
func SendAsync(e Emailer, toName string, to string, subject string, content string) <-chan error {
	errc := make(chan error, 1)
	go func() {
		errc <- e.Send(toName, to, subject, content)
		close(errc)
	}()
	return errc
}

package mail

import "fmt"

// CodeEmail composes the one-time-code message sent during verification and
// password reset. Subjects carry a no-reply marker.
func CodeEmail(to, subject, username string, code int) Message {
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("%s-(no-reply)", subject),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour code is: %06d\n\nThis code expires shortly. If you did not request it, you can ignore this message.\n",
			username, code,
		),
	}
}

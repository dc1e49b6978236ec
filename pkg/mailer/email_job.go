package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template with Data, or Subject with Text and optional HTML, must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "verify_email_otp", "admin_login_otp"
	Data     map[string]any `json:"data,omitempty"`
}

// Valid reports whether the job carries something a worker can send.
func (j EmailJob) Valid() bool {
	if j.To == "" {
		return false
	}
	return j.Template != "" || (j.Subject != "" && (j.Text != "" || j.HTML != ""))
}

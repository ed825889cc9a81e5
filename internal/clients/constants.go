package clients

const (
	USER_AGENT = "feedbackflow-client/1.0 (+https://github.com/spacesedan/feedbackflow)"
)

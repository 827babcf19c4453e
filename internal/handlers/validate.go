package handlers

const maxBodyLen = 10000

func validateBody(body string) bool {
	return len(body) <= maxBodyLen
}

package backend

import "fmt"

type (
	ErrorResponse struct {
		Error struct {
			Status      int    `json:"status"`
			Code        int    `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}

	// APIError is a non-2xx reply from the gateway.
	APIError struct {
		StatusCode  int
		Code        int
		Description string
		RawBody     string
	}
)

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: status=%d, code=%d, description=%s",
		e.StatusCode, e.Code, e.Description)
}

package errors

// ErrorBody is the JSON body written at the HTTP boundary for any failure.
type ErrorBody struct {
	Detail string `json:"detail"`         // User-friendly error message
	Code   string `json:"code,omitempty"` // Business error code, e.g., "NOT_FOUND"
}

// BodyOf renders an AppError into the boundary body.
func BodyOf(appErr AppError) ErrorBody {
	return ErrorBody{
		Detail: appErr.Message(),
		Code:   appErr.ErrorCode(),
	}
}

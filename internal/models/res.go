package models

// ApiResponse is the envelope every endpoint writes:
// {status: success|error, message?, data?, errors?} plus pagination fields
// for list payloads.
type ApiResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Page    int         `json:"page,omitempty"`
	Limit   int         `json:"limit,omitempty"`
	Total   int         `json:"total,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message string) ApiResponse {
	return ApiResponse{
		Status:  "error",
		Message: message,
	}
}

func ValidationResponse(fields map[string][]string) ApiResponse {
	return ApiResponse{
		Status:  "error",
		Message: "Validation failed",
		Errors:  fields,
	}
}

func PaginatedResponse(data interface{}, page, limit, total int) ApiResponse {
	return ApiResponse{
		Status: "success",
		Data:   data,
		Page:   page,
		Limit:  limit,
		Total:  total,
	}
}

package utils

import "github.com/gin-gonic/gin"

// ApiResponse is the envelope every catalog endpoint answers with.
type ApiResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func NewResponse(status int, message string, data interface{}) ApiResponse {
	return ApiResponse{Status: status, Message: message, Data: data}
}

// Respond writes an envelope whose status matches the HTTP status.
func Respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, NewResponse(status, message, data))
}

// Package handlers provides HTTP handlers for the audit delivery engine.
package handlers

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

// jsonHeaders returns the response headers shared by all handlers, including
// CORS headers for the allowed methods.
func jsonHeaders(methods string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": methods,
		"Content-Type":                 "application/json",
	}
}

// jsonResponse marshals a payload into an API Gateway response.
func jsonResponse(headers map[string]string, statusCode int, payload interface{}) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(payload)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	return jsonResponse(headers, statusCode, map[string]string{"error": message})
}

package actions

// A list of status codes used inside the application. For more details see: https://httpstatuses.com/

// OK - success
const OK = 200

// Created - resource created
const Created = 201

// Found - redirect to the tracked link target
const Found = 302

// BadRequest - sent when a bad request was submitted by the client
const BadRequest = 400

// Unauthorized - when the caller did not send valid credentials
const Unauthorized = 401

// NotFound - the resource identified by the given ID does not exist
const NotFound = 404

// MethodNotAllowed - the route exists but not for the given method
const MethodNotAllowed = 405

// Conflict - the resource already exists or changed state
const Conflict = 409

// TooManyRequests - rate limit or quota reached
const TooManyRequests = 429

// ServerError - internal server error
const ServerError = 500

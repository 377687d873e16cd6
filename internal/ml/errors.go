// Package ml provides the client for the ticket classifier service.
package ml

import "errors"

var (
	// ErrClassifierUnavailable indicates the classifier is unreachable or kept failing
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrInvalidPrediction indicates the prediction response is malformed
	ErrInvalidPrediction = errors.New("invalid prediction response")

	// ErrRequestRejected indicates the classifier refused the feature row
	ErrRequestRejected = errors.New("prediction request rejected")

	// ErrInvalidFeatureList indicates an empty or malformed feature list
	ErrInvalidFeatureList = errors.New("invalid feature list")
)

package ecg

import "fmt"

// ImageReadError reports a missing, corrupt, or undecodable input image.
// Fatal for the request; never retried.
type ImageReadError struct {
	Path string
	Err  error
}

func (e *ImageReadError) Error() string {
	return fmt.Sprintf("ecg: read image %s: %v", e.Path, e.Err)
}

func (e *ImageReadError) Unwrap() error { return e.Err }

// DigitizationFailure reports that neither the preferred digitization
// service nor the grid fallback produced any lead samples.
type DigitizationFailure struct {
	Reason string
}

func (e *DigitizationFailure) Error() string {
	return "ecg: digitization failed: " + e.Reason
}

// StandardizationError reports a malformed signal reaching the
// standardizer. Given a well-formed digitizer output this cannot happen;
// it is surfaced as an internal invariant violation.
type StandardizationError struct {
	Reason string
}

func (e *StandardizationError) Error() string {
	return "ecg: standardization: " + e.Reason
}

// ClassificationError reports a disease-scorer failure at inference time.
// There is no fallback classifier, so this fails the request.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("ecg: classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

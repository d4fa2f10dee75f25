package model

import "fmt"

// ParseFailure marks a source unit that could not be ingested
type ParseFailure struct {
	Path   string
	Reason string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse failure in %s: %s", e.Path, e.Reason)
}

// InsufficientDataError is returned when training data cannot support stratified validation
type InsufficientDataError struct {
	Operation string
	Label     int
	Count     int
	Required  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: label %d has %d samples, need at least %d", e.Operation, e.Label, e.Count, e.Required)
}

// ModelNotTrainedError is returned when inference is attempted before train or load
type ModelNotTrainedError struct {
	Operation string
}

func (e *ModelNotTrainedError) Error() string {
	return fmt.Sprintf("%s: model has not been trained or loaded", e.Operation)
}

// ModelFormatError is returned when a persisted model cannot be loaded
type ModelFormatError struct {
	Handle string
	Reason string
}

func (e *ModelFormatError) Error() string {
	return fmt.Sprintf("model %q: %s", e.Handle, e.Reason)
}

// ThresholdConfigError is returned for an invalid threshold value
type ThresholdConfigError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ThresholdConfigError) Error() string {
	return fmt.Sprintf("invalid threshold %s=%v: %s", e.Key, e.Value, e.Reason)
}

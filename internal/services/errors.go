package services

import "errors"

// ErrNotLoaded is returned when metrics are requested before any dataset
// load has succeeded
var ErrNotLoaded = errors.New("dataset not loaded")

// ErrUnknownReport is returned for an export name outside ReportNames
var ErrUnknownReport = errors.New("report not found")

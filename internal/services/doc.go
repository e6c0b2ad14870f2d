// Package services contains the application service layer. ReportService
// owns the uploaded dataset and runs the aggregation pipeline on demand;
// handlers and the CLI stay thin over it.
package services

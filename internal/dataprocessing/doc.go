// Package dataprocessing aggregates normalized business report records by
// period or by product and derives the dashboard KPIs (conversion rate,
// average order value, revenue per session).
//
// All KPI derivation uses guarded division: a zero denominator yields 0,
// never NaN or Inf. Column resolution failures do not abort aggregation;
// the affected metric is zero-filled and the missing column is disclosed
// on the result.
package dataprocessing
